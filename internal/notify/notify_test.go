package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	m       sync.Mutex
	msgs    []kafka.Message
	ctxErrs []error
	err     error
	closed  bool
}

func (w *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.m.Lock()
	defer w.m.Unlock()
	w.ctxErrs = append(w.ctxErrs, ctx.Err())
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, "", r.Last())

	r.Error(context.Background(), "first")
	r.Error(context.Background(), "second")

	assert.Equal(t, []string{"first", "second"}, r.Messages())
	assert.Equal(t, "second", r.Last())

	msgs := r.Messages()
	msgs[0] = "changed"
	assert.Equal(t, "first", r.Messages()[0])

	r.Reset()
	assert.Empty(t, r.Messages())
}

func TestMulti_FansOut(t *testing.T) {
	var a, b Recorder
	m := Multi{&a, &b}

	m.Error(context.Background(), "out of stock")

	assert.Equal(t, []string{"out of stock"}, a.Messages())
	assert.Equal(t, []string{"out of stock"}, b.Messages())
}

func TestLogNotifier(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := NewLogNotifier(log)

	n.Error(context.Background(), "Failed to add product")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Failed to add product", entry.Data["notification"])
}

func TestKafkaNotifier_Publishes(t *testing.T) {
	log, _ := test.NewNullLogger()
	w := &mockWriter{}
	n := newKafkaNotifier(w, log)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return at }

	n.Error(context.Background(), "Requested quantity is out of stock")

	require.Len(t, w.msgs, 1)
	var event Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, Event{Level: "error", Message: "Requested quantity is out of stock", At: at}, event)
}

func TestKafkaNotifier_IgnoresCanceledCaller(t *testing.T) {
	log, _ := test.NewNullLogger()
	w := &mockWriter{}
	n := newKafkaNotifier(w, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Error(ctx, "Failed to remove product")

	require.Len(t, w.msgs, 1)
	assert.NoError(t, w.ctxErrs[0])
}

func TestKafkaNotifier_WriteErrorIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	w := &mockWriter{err: errors.New("broker down")}
	n := newKafkaNotifier(w, log)

	n.Error(context.Background(), "Failed to change product quantity")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to publish notification", entry.Message)
	assert.Equal(t, "Failed to change product quantity", entry.Data["notification"])
}

func TestKafkaNotifier_Close(t *testing.T) {
	log, _ := test.NewNullLogger()
	w := &mockWriter{}
	n := newKafkaNotifier(w, log)

	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaNotifier_ShortBatchTimeout(t *testing.T) {
	log, _ := test.NewNullLogger()
	n := NewKafkaNotifier(log, "cart-notifications", "localhost:9092")
	defer n.Close()

	writer, ok := n.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, batchTimeout, writer.BatchTimeout)
	assert.Equal(t, "cart-notifications", writer.Topic)
}
