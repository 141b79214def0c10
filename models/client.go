package models

import "gorm.io/gorm"

// Client is a person the trainer works with. DateOfBirth is stored as text
// in the app-wide dd.MM.yyyy format; it is validated at the form boundary,
// not re-checked here.
type Client struct {
	gorm.Model
	FirstName   string `gorm:"not null"`
	LastName    string `gorm:"not null"`
	Email       string `gorm:"not null"`
	DateOfBirth string `gorm:"not null"`

	Measurements []Measurement `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
