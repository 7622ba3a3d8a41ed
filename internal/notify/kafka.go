package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout = 5 * time.Second
	batchTimeout   = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the payload published for every notification.
type Event struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// KafkaNotifier publishes notifications to a topic a front-end can
// subscribe to.
type KafkaNotifier struct {
	writer messageWriter
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewKafkaNotifier(log logrus.FieldLogger, topic string, brokers ...string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaNotifier(writer, log)
}

func newKafkaNotifier(writer messageWriter, log logrus.FieldLogger) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, log: log, now: time.Now}
}

func (n *KafkaNotifier) Error(ctx context.Context, message string) {
	payload, err := json.Marshal(Event{Level: "error", Message: message, At: n.now().UTC()})
	if err != nil {
		n.log.WithError(err).Error("failed to encode notification")
		return
	}

	// the notification must go out even if the triggering request is done
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		n.log.WithError(err).WithField("notification", message).Error("failed to publish notification")
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
