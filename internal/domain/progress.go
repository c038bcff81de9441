package domain

import "time"

// ClientProgress is a dated body measurement for a client.
type ClientProgress struct {
	ID                    int64     `bson:"_id" json:"id"`
	ClientID              int64     `bson:"clientId" json:"clientId"`
	Weight                float64   `bson:"weight" json:"weight"`
	BodyFatPercentage     *float64  `bson:"bodyFatPercentage,omitempty" json:"bodyFatPercentage,omitempty"`
	MuscleMass            *float64  `bson:"muscleMass,omitempty" json:"muscleMass,omitempty"`
	WaistCircumference    *float64  `bson:"waistCircumference,omitempty" json:"waistCircumference,omitempty"`
	ChestCircumference    *float64  `bson:"chestCircumference,omitempty" json:"chestCircumference,omitempty"`
	HipCircumference      *float64  `bson:"hipCircumference,omitempty" json:"hipCircumference,omitempty"`
	Notes                 string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedDate          time.Time `bson:"recordedDate" json:"recordedDate"`
	RecordedByDietitianID *int64    `bson:"recordedByDietitianId,omitempty" json:"recordedByDietitianId,omitempty"`
	IsClientEntry         bool      `bson:"isClientEntry" json:"isClientEntry"`
	Audit                 `bson:",inline"`
}

// ProgressPhoto stores metadata about a photo attached to a progress entry.
// The file itself lives in object storage under ObjectKey.
type ProgressPhoto struct {
	ID          int64     `bson:"_id" json:"id"`
	ProgressID  int64     `bson:"progressId" json:"progressId"`
	ClientID    int64     `bson:"clientId" json:"clientId"` // denormalized for listing
	ObjectKey   string    `bson:"objectKey" json:"-"`
	FileName    string    `bson:"fileName" json:"fileName"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
	Audit       `bson:",inline"`
}
