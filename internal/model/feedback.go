package model

import "time"

// Feedback is a review left on the public feedback board.
type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	DatePosted time.Time `json:"date_posted" gorm:"autoCreateTime"`
}
