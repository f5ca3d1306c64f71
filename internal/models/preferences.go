package models

import (
	"time"

	"github.com/google/uuid"
)

// Preference defaults applied when an owner has no stored row
const (
	DefaultTimezone        = "UTC"
	DefaultStreakThreshold = 80.0
	DefaultWeekStartDay    = 0 // Monday
)

// UserPreferences holds per-owner settings the engines consult
type UserPreferences struct {
	OwnerID            uuid.UUID `json:"owner_id"`
	Timezone           string    `json:"timezone"`
	StreakThresholdPct float64   `json:"streak_threshold_pct" validate:"gte=0,lte=100"`
	WeekStartDay       int       `json:"week_start_day" validate:"gte=0,lte=6"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings used for owners without a stored row
func DefaultPreferences(ownerID uuid.UUID) *UserPreferences {
	return &UserPreferences{
		OwnerID:            ownerID,
		Timezone:           DefaultTimezone,
		StreakThresholdPct: DefaultStreakThreshold,
		WeekStartDay:       DefaultWeekStartDay,
	}
}
