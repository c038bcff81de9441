package domain

import "time"

// DietPlan is a time-bounded nutrition program for one client.
// CreatedByDietitianID is fixed at creation and never rewritten, even when
// the client later moves to another dietitian.
type DietPlan struct {
	ID                   int64     `bson:"_id" json:"id"`
	Title                string    `bson:"title" json:"title"`
	Description          string    `bson:"description,omitempty" json:"description,omitempty"`
	StartDate            time.Time `bson:"startDate" json:"startDate"`
	EndDate              time.Time `bson:"endDate" json:"endDate"`
	InitialWeight        float64   `bson:"initialWeight" json:"initialWeight"`
	TargetWeight         float64   `bson:"targetWeight" json:"targetWeight"`
	ClientID             int64     `bson:"clientId" json:"clientId"`
	CreatedByDietitianID int64     `bson:"createdByDietitianId" json:"createdByDietitianId"`
	Audit                `bson:",inline"`
}

// IsAuthoredBy reports whether the dietitian wrote this plan.
func (p *DietPlan) IsAuthoredBy(dietitianID int64) bool {
	return p.CreatedByDietitianID == dietitianID
}
