package models

import "gorm.io/gorm"

// Measurement is one body-composition reading taken for a client. Values
// are magnitudes with no enforced range; the form layer only guarantees
// they were parseable numbers when entered.
type Measurement struct {
	gorm.Model
	ClientID         uint   `gorm:"not null;index"`
	Date             string `gorm:"not null"`
	BodyWeightKg     float64
	LeanMuscleMassKg float64
	BodyFatKg        float64
	VisceralFat      float64
	MineralsKg       float64
	MetabolicAge     float64
}
