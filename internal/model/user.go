package model

import "time"

// DefaultImageFile is the sentinel profile image for users who never set one.
const DefaultImageFile = "default.png"

// User represents a registered member of the site.
//
// Username and Email carry unique indexes; the database is the authority for
// uniqueness even though the service layer pre-checks both before inserting.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:14;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ImageFile    string    `json:"image_file" gorm:"size:64;not null;default:'default.png'"`
	AboutMe      string    `json:"about_me" gorm:"size:240"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
