package feedback

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Sink mirrors accepted feedback to external storage. Appends are
// best-effort: callers fire them on their own goroutine and only log
// failures, so a broken sink never delays a response or a game broadcast.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

type feedbackRecord struct {
	ID         string `gorm:"primaryKey;size:32"`
	Rating     float64
	Message    string `gorm:"size:2000"`
	RoomID     string `gorm:"size:32"`
	SocketID   string `gorm:"size:48"`
	URL        string `gorm:"size:2048"`
	UserAgent  string `gorm:"size:512"`
	IP         string `gorm:"size:64"`
	Origin     string `gorm:"size:256"`
	ReceivedAt time.Time
}

func (feedbackRecord) TableName() string { return "feedback_entries" }

// PostgresSink appends feedback rows to Postgres.
type PostgresSink struct {
	db *gorm.DB
}

func OpenPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&feedbackRecord{}); err != nil {
		return nil, err
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Append(ctx context.Context, e Entry) error {
	rec := feedbackRecord{
		ID:         e.ID,
		Rating:     e.Rating,
		Message:    e.Message,
		ReceivedAt: e.ReceivedAt,
	}
	if e.Context != nil {
		rec.RoomID = e.Context.RoomID
		rec.SocketID = e.Context.SocketID
		rec.URL = e.Context.URL
		rec.UserAgent = e.Context.UserAgent
	}
	if e.Meta != nil {
		rec.IP = e.Meta.IP
		rec.Origin = e.Meta.Origin
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}
