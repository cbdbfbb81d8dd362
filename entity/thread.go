package entity

import (
	"time"
)

const ThreadParticipantsTable = "thread_participants"

type Thread struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	// LatestMessageAt and LatestMessageID only move forward and are always
	// written together with the message they point at.
	LatestMessageAt time.Time `gorm:"not null;index"`
	LatestMessageID *uint

	Participants  []User    `gorm:"many2many:thread_participants;constraint:OnDelete:CASCADE"`
	LatestMessage *Message  `gorm:"foreignKey:LatestMessageID"`
	Messages      []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

func (t *Thread) HasParticipant(userID uint) bool {
	for _, p := range t.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func (t *Thread) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(t.Participants))
	for _, p := range t.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
