package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setupKafka(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping Kafka integration test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestKafka_PublishConsume(t *testing.T) {
	brokerAddr := setupKafka(t)
	topic := "artverse-events-test"
	createTopic(t, brokerAddr, topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := NewKafkaPublisher(topic, brokerAddr)
	defer pub.Close()

	recipient := primitive.NewObjectID()
	sent := New(OrderPlaced, recipient, "You have a new order", "/orders/abc")
	require.NoError(t, pub.Publish(ctx, sent))

	h := &recordingHandler{}
	c := NewConsumer(h, zap.NewNop(), topic, "artverse-test", brokerAddr)
	defer c.Close()
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		return len(h.received()) == 1
	}, 20*time.Second, 250*time.Millisecond)

	got := h.received()[0]
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, recipient, got.RecipientID)
	assert.Equal(t, OrderPlaced, got.Type)
}
