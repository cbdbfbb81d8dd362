package entity

import (
	"time"
)

// User is an account that can take part in threads. Usernames are stored
// lower-cased; deactivated users keep their history but cannot sign in or
// be addressed by new threads.
type User struct {
	ID        uint   `gorm:"primarykey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}
