package domain

import "time"

// Client is a managed patient. DietitianID is nil while the client is unassigned.
type Client struct {
	ID                int64      `bson:"_id" json:"id"`
	UserID            int64      `bson:"userId" json:"userId"`
	DietitianID       *int64     `bson:"dietitianId,omitempty" json:"dietitianId,omitempty"`
	DateOfBirth       time.Time  `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender            string     `bson:"gender" json:"gender"`
	Height            float64    `bson:"height" json:"height"`
	InitialWeight     float64    `bson:"initialWeight" json:"initialWeight"`
	CurrentWeight     *float64   `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"`
	MedicalConditions string     `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty"`
	Allergies         string     `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Audit             `bson:",inline"`
}

// IsManagedBy reports whether the client is currently assigned to the dietitian.
func (c *Client) IsManagedBy(dietitianID int64) bool {
	return c.DietitianID != nil && *c.DietitianID == dietitianID
}

// Age returns the client's age in whole years on the given day.
func (c *Client) Age(today time.Time) int {
	return AgeOn(c.DateOfBirth, today)
}

// AgeOn counts whole years elapsed between birth and today: the year
// difference, minus one when this year's birthday has not been reached yet.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
