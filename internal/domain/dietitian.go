package domain

// Dietitian is the professional profile attached to a user holding RoleDietitian.
type Dietitian struct {
	ID             int64  `bson:"_id" json:"id"`
	UserID         int64  `bson:"userId" json:"userId"`
	Specialization string `bson:"specialization" json:"specialization"`
	LicenseNumber  string `bson:"licenseNumber" json:"licenseNumber"`
	Education      string `bson:"education,omitempty" json:"education,omitempty"`
	Biography      string `bson:"biography,omitempty" json:"biography,omitempty"`
	Audit          `bson:",inline"`
}
