package producers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/roadlab/stats19/internal/models"
)

// SaramaProducer publishes records to Kafka synchronously so a failed
// delivery surfaces as an error on the write path rather than later.
type SaramaProducer struct {
	producer sarama.SyncProducer
}

func NewSaramaProducer(config *models.Config) (*SaramaProducer, error) {
	brokers := strings.Split(config.KafkaBrokerList, ",")
	if len(brokers) == 0 || brokers[0] == "" {
		return nil, fmt.Errorf("kafka broker list is empty")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting kafka producer: %w", err)
	}

	log.Printf("Kafka producer connected to %v", brokers)
	return &SaramaProducer{producer: producer}, nil
}

func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	_, _, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("sending to topic %s: %w", topic, err)
	}
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
