package entity

import (
	"time"
)

type Message struct {
	ID       uint      `gorm:"primarykey"`
	ThreadID uint      `gorm:"not null;index:idx_messages_thread_sent,priority:1"`
	SenderID uint      `gorm:"not null"`
	Content  string    `gorm:"type:text;not null"`
	SentAt   time.Time `gorm:"not null;index:idx_messages_thread_sent,priority:2"`

	Sender User `gorm:"foreignKey:SenderID"`
}
