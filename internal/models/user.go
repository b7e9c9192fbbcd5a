package models

import (
	"time"
)

// User is an account that can publish recipes and follow other authors.
// Username and email are each unique.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Filled by annotated queries relative to the caller.
	IsSubscribed bool `gorm:"->;-:migration" json:"is_subscribed"`
}

// Subscription links a subscriber to an author they follow
type Subscription struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_no_self_subscription,subscriber_id <> author_id" json:"subscriber_id"`
	Subscriber   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"author_id"`
	Author       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
