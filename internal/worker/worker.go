package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"relist/internal/config"
	"relist/internal/logger"
	"relist/internal/models"

	"github.com/segmentio/kafka-go"
)

// Worker tails the activity-event topic and mirrors every entry to the
// console, serving as an out-of-process log shipper. It carries no
// broker logic; losing it loses nothing but the mirror.
type Worker struct {
	config *config.Config
	logger *logger.Logger
	reader *kafka.Reader
}

func New(cfg *config.Config, logger *logger.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "relist-log-shipper",
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: logger,
		reader: reader,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for activity events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if isIdlePoll(err) {
				continue
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal(message.Value, &entry); err != nil {
			w.logger.Error("Failed to parse activity event: %v", err)
			continue
		}

		w.logger.Info("[%s] %s (%s) %s", entry.Level, entry.Source, entry.MerchantID, entry.Message)
	}
}

// isIdlePoll reports whether a read failed only because the poll
// deadline elapsed with no message. The reader may wrap the context
// error, so this matches by chain, not identity.
func isIdlePoll(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
