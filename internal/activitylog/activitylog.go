package activitylog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"relist/internal/logger"
	"relist/internal/models"
)

// Logger is the append-only structured event sink every broker
// operation reports to. Appends are fire-and-forget: a failing sink
// must never fail the operation being logged, so errors are swallowed
// and mirrored to the console logger instead.
type Logger struct {
	db      *gorm.DB
	console *logger.Logger
	writer  *kafka.Writer
}

func New(db *gorm.DB, console *logger.Logger) *Logger {
	return &Logger{db: db, console: console}
}

// WithKafka enables best-effort fan-out of every entry to a Kafka
// topic for external log shippers. Delivery failures are only
// console-logged.
func (l *Logger) WithKafka(brokers []string, topic string) *Logger {
	l.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
		Async:        true,
	}
	return l
}

// Append records one entry. Never returns an error.
func (l *Logger) Append(merchantID string, level models.LogLevel, source, message string, details map[string]interface{}) {
	entry := models.ActivityLog{
		MerchantID: merchantID,
		Level:      level,
		Source:     source,
		Message:    message,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	if l.db != nil {
		if err := l.db.Create(&entry).Error; err != nil {
			l.console.Error("activity log append failed: %v", err)
		}
	}

	if l.writer != nil {
		l.publish(&entry)
	}

	if level == models.LogLevelError {
		l.console.Error("[%s] %s", source, message)
	} else {
		l.console.Debug("[%s] %s %s", source, level, message)
	}
}

func (l *Logger) publish(entry *models.ActivityLog) {
	payload, err := json.Marshal(entry)
	if err != nil {
		l.console.Error("activity event marshal failed: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		l.console.Error("activity event publish failed: %v", err)
	}
}

// Recent returns the newest entries for a merchant, newest first.
func (l *Logger) Recent(merchantID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	var entries []models.ActivityLog
	err := l.db.
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Clear removes a merchant's entries. Broker code never calls this;
// it backs the dashboard's explicit "clear logs" action only.
func (l *Logger) Clear(merchantID string) error {
	return l.db.Where("merchant_id = ?", merchantID).Delete(&models.ActivityLog{}).Error
}

// Close flushes the Kafka writer if one is attached.
func (l *Logger) Close() error {
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}
