package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) received() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestNew(t *testing.T) {
	recipient := primitive.NewObjectID()
	e := New(OrderPlaced, recipient, "New order", "/orders/1")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, OrderPlaced, e.Type)
	assert.Equal(t, recipient, e.RecipientID)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestDirectPublisher(t *testing.T) {
	h := &recordingHandler{}
	p := NewDirectPublisher(h)
	a := New(CommissionCreated, primitive.NewObjectID(), "a", "")
	b := New(CommissionStatusChanged, primitive.NewObjectID(), "b", "")

	require.NoError(t, p.Publish(context.Background(), a, b))
	assert.Equal(t, []Event{a, b}, h.received())

	h.err = errors.New("store down")
	assert.ErrorContains(t, p.Publish(context.Background(), a), "store down")
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	e := New(ArtworkReviewed, primitive.NewObjectID(), "Your artwork was approved", "/artworks/1")

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, e.RecipientID.Hex(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, eventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, string(ArtworkReviewed), string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, e.RecipientID, decoded.RecipientID)

	// nothing to write
	require.NoError(t, p.Publish(context.Background()))
	assert.Len(t, w.msgs, 1)

	w.err = errors.New("broker unavailable")
	assert.ErrorContains(t, p.Publish(context.Background(), e), "broker unavailable")
}

func TestConsumer_HandleMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := &recordingHandler{}
	c := &Consumer{handler: h, log: zap.New(core)}

	e := New(CourseEnrolled, primitive.NewObjectID(), "A student enrolled", "/courses/1")
	value, err := json.Marshal(e)
	require.NoError(t, err)

	c.handleMessage(context.Background(), kafka.Message{Value: value})
	require.Len(t, h.received(), 1)
	assert.Equal(t, e.ID, h.received()[0].ID)

	c.handleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	c.handleMessage(context.Background(), kafka.Message{Value: []byte(`{"id":"x","type":"order.placed"}`)})
	assert.Len(t, h.received(), 1)
	assert.Equal(t, 1, logs.FilterMessage("error parsing message").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping event without recipient or type").Len())

	h.err = errors.New("insert failed")
	c.handleMessage(context.Background(), kafka.Message{Value: value})
	assert.Equal(t, 1, logs.FilterMessage("failed to handle event").Len())
}

type failingReader struct {
	mu    sync.Mutex
	calls int
	msgs  []kafka.Message
	err   error
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		return m, nil
	}
	return kafka.Message{}, r.err
}

func (r *failingReader) Close() error { return nil }

func (r *failingReader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestConsumer_RunBacksOffOnReadErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := &failingReader{err: errors.New("dial tcp: connection refused")}
	c := &Consumer{
		reader:     r,
		handler:    &recordingHandler{},
		log:        zap.New(core),
		backoff:    20 * time.Millisecond,
		maxBackoff: 80 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	start := time.Now()
	c.Run(ctx)

	assert.Less(t, time.Since(start), time.Second, "Run returns once the context is done")
	// reads at roughly 0, 20, 60, 140 and 220ms
	assert.GreaterOrEqual(t, r.count(), 2)
	assert.LessOrEqual(t, r.count(), 7)
	assert.Equal(t, r.count(), logs.FilterMessage("error reading message").Len())
}

func TestConsumer_RunHandlesMessages(t *testing.T) {
	e := New(OrderPlaced, primitive.NewObjectID(), "New order", "/orders/1")
	value, err := json.Marshal(e)
	require.NoError(t, err)

	h := &recordingHandler{}
	r := &failingReader{msgs: []kafka.Message{{Value: value}}, err: errors.New("no more messages")}
	c := &Consumer{reader: r, handler: h, log: zap.NewNop(), backoff: time.Millisecond, maxBackoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	require.Eventually(t, func() bool { return len(h.received()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
