package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]*kafka.Consumer
	consumersMutex sync.RWMutex
	brokers        []string
	groupID        string
	logger         interfaces.LoggerPort
}

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(brokers []string, groupID string, logger interfaces.LoggerPort) (interfaces.MessagingPort, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            brokers,
		"client.id":                    "sync-service-producer",
		"acks":                         "all",
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"batch.size":                   16384,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	return &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]*kafka.Consumer),
		brokers:   brokers,
		groupID:   groupID,
		logger:    logger,
	}, nil
}

// messageToKafkaMessage преобразует сообщение в kafka.Message
func messageToKafkaMessage(topic string, message []byte) *kafka.Message {
	headers := []kafka.Header{
		{Key: "message_id", Value: []byte(uuid.New().String())},
		{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Headers:        headers,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string)
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	var key string
	if msg.Key != nil {
		key = string(msg.Key)
	}

	publishedAt := time.Now()
	if tsStr, ok := headers["timestamp"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil {
			publishedAt = ts
		}
	}

	return &interfaces.Message{
		ID:          headers["message_id"],
		Topic:       *msg.TopicPartition.Topic,
		Key:         key,
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	msg := messageToKafkaMessage(topic, message)
	return k.producer.Produce(msg, nil)
}

// Subscribe подписывается на указанную тему и обрабатывает сообщения с помощью handler
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	config := &interfaces.ConsumerConfig{
		GroupID:            k.groupID,
		AutoCommit:         true,
		AutoCommitInterval: 5 * time.Second,
		PollTimeout:        100 * time.Millisecond,
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       k.brokers,
		"group.id":                config.GroupID,
		"auto.offset.reset":       "latest",
		"enable.auto.commit":      config.AutoCommit,
		"auto.commit.interval.ms": int(config.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":      30000,
		"heartbeat.interval.ms":   3000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	consumerID := uuid.New().String()
	k.consumersMutex.Lock()
	k.consumers[consumerID] = consumer
	k.consumersMutex.Unlock()

	// обработка сообщений в отдельной горутине
	go k.consumeMessages(ctx, consumer, topic, handler, config)

	unsubscribe := func() error {
		k.consumersMutex.Lock()
		consumer := k.consumers[consumerID]
		delete(k.consumers, consumerID)
		k.consumersMutex.Unlock()

		if consumer != nil {
			return consumer.Close()
		}
		return nil
	}

	return unsubscribe, nil
}

// consumeMessages обрабатывает сообщения из Kafka до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, topic string,
	handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				msg := kafkaMessageToMessage(e)

				if err := handler(ctx, msg); err != nil {
					k.logger.ErrorWithContext(ctx, "Ошибка обработки сообщения",
						interfaces.LogField{Key: "topic", Value: topic},
						interfaces.LogField{Key: "message_id", Value: msg.ID},
						interfaces.LogField{Key: "error", Value: err.Error()})
					continue
				}

				if !config.AutoCommit {
					if _, err := consumer.CommitMessage(e); err != nil {
						k.logger.ErrorWithContext(ctx, "Ошибка подтверждения сообщения",
							interfaces.LogField{Key: "topic", Value: topic},
							interfaces.LogField{Key: "error", Value: err.Error()})
					}
				}

			case kafka.Error:
				k.logger.ErrorWithContext(ctx, "Ошибка Kafka",
					interfaces.LogField{Key: "topic", Value: topic},
					interfaces.LogField{Key: "error", Value: e.Error()})
			}
		}
	}
}

// Close закрывает producer и всех consumer-ов
func (k *KafkaMessaging) Close() error {
	k.producer.Flush(5000)
	k.producer.Close()

	k.consumersMutex.Lock()
	defer k.consumersMutex.Unlock()

	for id, consumer := range k.consumers {
		if err := consumer.Close(); err != nil {
			k.logger.Error("Ошибка закрытия Kafka consumer",
				interfaces.LogField{Key: "consumer_id", Value: id},
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
		delete(k.consumers, id)
	}

	return nil
}
