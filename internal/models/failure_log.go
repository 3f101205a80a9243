package models

import (
	"time"

	"gorm.io/gorm"
)

// FailureLog records a sampling tick on which the window system could not be queried.
type FailureLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Platform  string         `gorm:"not null" json:"platform"`
	Reason    string         `gorm:"not null;index" json:"reason"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
