package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
)

// submission matches the consumer's expected message shape
type submission struct {
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

var usernamePrefixes = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf", "Hawk", "Viper",
	"Ghost", "Titan", "Frost", "Cyber", "Nova", "Raven", "Omega", "Alpha", "Delta", "Sigma",
}

func randomUsername(r *rand.Rand) string {
	return fmt.Sprintf("%s%d", usernamePrefixes[r.Intn(len(usernamePrefixes))], r.Intn(10000))
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "player-scores", "Kafka topic")
	rate := flag.Int("rate", 100, "Submissions per second")
	maxScore := flag.Int64("max-score", 1000, "Maximum random score")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Printf("producing to %s topic %s at %d/sec\n", *brokers, *topic, *rate)

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("failed to create producer: %v", err)
	}
	defer producer.Close()

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("produce error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()

	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	var sent int64

loop:
	for {
		select {
		case <-quit:
			break loop
		case <-deadline:
			break loop
		case <-report.C:
			log.Printf("sent=%d acked=%d errors=%d",
				sent, atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
		case <-ticker.C:
			msg := submission{
				Username: randomUsername(rng),
				Score:    rng.Int63n(*maxScore + 1),
			}
			value, err := json.Marshal(msg)
			if err != nil {
				log.Printf("marshal error: %v", err)
				continue
			}
			producer.Input() <- &sarama.ProducerMessage{
				Topic: *topic,
				Key:   sarama.StringEncoder(msg.Username),
				Value: sarama.ByteEncoder(value),
			}
			sent++
		}
	}

	producer.AsyncClose()
	wg.Wait()

	log.Printf("done: sent=%d acked=%d errors=%d",
		sent, atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
}
