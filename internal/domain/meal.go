package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time stored as seconds after midnight.
// It marshals to and from "HH:MM:SS" ("HH:MM" is accepted on input).
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay from its components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay parses "HH:MM:SS" or "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// Valid reports whether the value lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < secondsPerDay
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Meal is a scheduled nutrition entry inside a DietPlan. Ownership follows
// the parent plan's author.
type Meal struct {
	ID            int64     `bson:"_id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	StartTime     TimeOfDay `bson:"startTime" json:"startTime"`
	EndTime       TimeOfDay `bson:"endTime" json:"endTime"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Contents      string    `bson:"contents" json:"contents"`
	Calories      int       `bson:"calories" json:"calories"`
	Proteins      float64   `bson:"proteins" json:"proteins"`
	Carbohydrates float64   `bson:"carbohydrates" json:"carbohydrates"`
	Fats          float64   `bson:"fats" json:"fats"`
	DietPlanID    int64     `bson:"dietPlanId" json:"dietPlanId"`
	Audit         `bson:",inline"`
}

// HasNegativeNutrition reports whether any nutrition value is below zero.
func (m *Meal) HasNegativeNutrition() bool {
	return m.Calories < 0 || m.Proteins < 0 || m.Carbohydrates < 0 || m.Fats < 0
}
