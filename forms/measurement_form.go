package forms

import (
	"strconv"
	"time"

	"trainertrack/models"
)

// MeasurementForm is the editable representation of a body-composition
// measurement. Numeric fields are text so intermediate input like "12."
// survives an edit round without being coerced or rejected.
type MeasurementForm struct {
	ID               uint   `json:"id"`
	ClientID         uint   `json:"clientId"`
	Date             string `json:"date"`
	BodyWeightKg     string `json:"bodyWeightKg"`
	LeanMuscleMassKg string `json:"leanMuscleMassKg"`
	BodyFatKg        string `json:"bodyFatKg"`
	VisceralFat      string `json:"visceralFat"`
	MineralsKg       string `json:"mineralsKg"`
	MetabolicAge     string `json:"metabolicAge"`
}

// NewMeasurementForm returns a fresh form bound to a client, with the date
// pre-filled from the supplied clock.
func NewMeasurementForm(clientID uint, now time.Time) MeasurementForm {
	return MeasurementForm{
		ClientID: clientID,
		Date:     CurrentDate(now),
	}
}

// IsValid reports whether every numeric field holds a parseable finite
// number. Empty fields count as not-yet-valid, not as errors.
func (f MeasurementForm) IsValid() bool {
	return IsValidNumber(f.BodyWeightKg) &&
		IsValidNumber(f.LeanMuscleMassKg) &&
		IsValidNumber(f.BodyFatKg) &&
		IsValidNumber(f.VisceralFat) &&
		IsValidNumber(f.MineralsKg) &&
		IsValidNumber(f.MetabolicAge)
}

// Apply returns a copy of the form with the edited field replaced. Unknown
// field names leave the form unchanged.
func (f MeasurementForm) Apply(edit FieldEdit) MeasurementForm {
	switch edit.Field {
	case "date":
		f.Date = edit.Value
	case "bodyWeightKg":
		f.BodyWeightKg = edit.Value
	case "leanMuscleMassKg":
		f.LeanMuscleMassKg = edit.Value
	case "bodyFatKg":
		f.BodyFatKg = edit.Value
	case "visceralFat":
		f.VisceralFat = edit.Value
	case "mineralsKg":
		f.MineralsKg = edit.Value
	case "metabolicAge":
		f.MetabolicAge = edit.Value
	}
	return f
}

// Measurement converts the form into its entity. Unparsable numeric text
// falls back to zero instead of failing; callers gate on IsValid before
// saving, so the fallback only matters if that gate is bypassed.
func (f MeasurementForm) Measurement() models.Measurement {
	m := models.Measurement{
		ClientID:         f.ClientID,
		Date:             f.Date,
		BodyWeightKg:     parseFloatOrDefault(f.BodyWeightKg, 0),
		LeanMuscleMassKg: parseFloatOrDefault(f.LeanMuscleMassKg, 0),
		BodyFatKg:        parseFloatOrDefault(f.BodyFatKg, 0),
		VisceralFat:      parseFloatOrDefault(f.VisceralFat, 0),
		MineralsKg:       parseFloatOrDefault(f.MineralsKg, 0),
		MetabolicAge:     parseFloatOrDefault(f.MetabolicAge, 0),
	}
	m.ID = f.ID
	return m
}

// MeasurementToForm builds the editable representation of a stored
// measurement. Floats render in their shortest round-trippable form, so
// converting back yields the identical value.
func MeasurementToForm(m models.Measurement) MeasurementForm {
	return MeasurementForm{
		ID:               m.ID,
		ClientID:         m.ClientID,
		Date:             m.Date,
		BodyWeightKg:     formatFloat(m.BodyWeightKg),
		LeanMuscleMassKg: formatFloat(m.LeanMuscleMassKg),
		BodyFatKg:        formatFloat(m.BodyFatKg),
		VisceralFat:      formatFloat(m.VisceralFat),
		MineralsKg:       formatFloat(m.MineralsKg),
		MetabolicAge:     formatFloat(m.MetabolicAge),
	}
}

func parseFloatOrDefault(text string, fallback float64) float64 {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fallback
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
