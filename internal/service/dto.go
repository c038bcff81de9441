package service

import (
	"alcyxob/dieta-core/internal/domain"
	"time"
)

// Request payloads carry their own binding rules; the API layer binds and
// validates them before calling a service. Services re-check the rules
// that protect stored data.

type RegisterInput struct {
	FirstName   string `json:"firstName" binding:"required,max=50"`
	LastName    string `json:"lastName" binding:"required,max=50"`
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"password"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ConfirmEmailInput struct {
	UserID int64  `json:"userId" binding:"required,gt=0"`
	Token  string `json:"token" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"password"`
}

type DietitianInput struct {
	FirstName      string `json:"firstName" binding:"required,max=50"`
	LastName       string `json:"lastName" binding:"required,max=50"`
	Email          string `json:"email" binding:"required,email,max=100"`
	Password       string `json:"password" binding:"password"`
	PhoneNumber    string `json:"phoneNumber" binding:"required,phone"`
	Specialization string `json:"specialization" binding:"required,max=100"`
	LicenseNumber  string `json:"licenseNumber" binding:"required,max=50"`
	Education      string `json:"education" binding:"max=200"`
	Biography      string `json:"biography" binding:"max=1000"`
}

type DietitianUpdateInput struct {
	FirstName      string `json:"firstName" binding:"required,max=50"`
	LastName       string `json:"lastName" binding:"required,max=50"`
	Email          string `json:"email" binding:"required,email,max=100"`
	PhoneNumber    string `json:"phoneNumber" binding:"required,phone"`
	Specialization string `json:"specialization" binding:"required,max=100"`
	LicenseNumber  string `json:"licenseNumber" binding:"required,max=50"`
	Education      string `json:"education" binding:"max=200"`
	Biography      string `json:"biography" binding:"max=1000"`
}

// ClientInput creates a client. DietitianID is honoured for admins only;
// a dietitian always creates clients assigned to itself.
type ClientInput struct {
	FirstName         string    `json:"firstName" binding:"required,max=50"`
	LastName          string    `json:"lastName" binding:"required,max=50"`
	Email             string    `json:"email" binding:"required,email,max=100"`
	Password          string    `json:"password" binding:"password"`
	PhoneNumber       string    `json:"phoneNumber" binding:"required,phone"`
	DietitianID       *int64    `json:"dietitianId" binding:"omitempty,gt=0"`
	DateOfBirth       time.Time `json:"dateOfBirth" binding:"required,adult"`
	Gender            string    `json:"gender" binding:"required,max=20"`
	Height            float64   `json:"height" binding:"required,gt=0"`
	InitialWeight     float64   `json:"initialWeight" binding:"required,gt=0"`
	MedicalConditions string    `json:"medicalConditions" binding:"max=500"`
	Allergies         string    `json:"allergies" binding:"max=500"`
}

// ClientUpdateInput updates a client. DietitianID is honoured for admins
// only; nil unassigns the client.
type ClientUpdateInput struct {
	FirstName         string    `json:"firstName" binding:"required,max=50"`
	LastName          string    `json:"lastName" binding:"required,max=50"`
	Email             string    `json:"email" binding:"required,email,max=100"`
	PhoneNumber       string    `json:"phoneNumber" binding:"required,phone"`
	DietitianID       *int64    `json:"dietitianId" binding:"omitempty,gt=0"`
	DateOfBirth       time.Time `json:"dateOfBirth" binding:"required,adult"`
	Gender            string    `json:"gender" binding:"required,max=20"`
	Height            float64   `json:"height" binding:"required,gt=0"`
	CurrentWeight     *float64  `json:"currentWeight" binding:"omitempty,gt=0"`
	MedicalConditions string    `json:"medicalConditions" binding:"max=500"`
	Allergies         string    `json:"allergies" binding:"max=500"`
}

type DietPlanInput struct {
	Title         string    `json:"title" binding:"required,max=100"`
	Description   string    `json:"description" binding:"max=500"`
	StartDate     time.Time `json:"startDate" binding:"required,notpast"`
	EndDate       time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	InitialWeight float64   `json:"initialWeight" binding:"required,gt=0"`
	TargetWeight  float64   `json:"targetWeight" binding:"required,gt=0"`
	ClientID      int64     `json:"clientId" binding:"required,gt=0"`
}

// DietPlanUpdateInput omits the client: a plan never changes hands.
type DietPlanUpdateInput struct {
	Title         string    `json:"title" binding:"required,max=100"`
	Description   string    `json:"description" binding:"max=500"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	InitialWeight float64   `json:"initialWeight" binding:"required,gt=0"`
	TargetWeight  float64   `json:"targetWeight" binding:"required,gt=0"`
}

type MealInput struct {
	Title         string           `json:"title" binding:"required,max=100"`
	StartTime     domain.TimeOfDay `json:"startTime"`
	EndTime       domain.TimeOfDay `json:"endTime" binding:"gtfield=StartTime"`
	Description   string           `json:"description" binding:"max=500"`
	Contents      string           `json:"contents" binding:"required,max=500"`
	Calories      int              `json:"calories" binding:"gte=0"`
	Proteins      float64          `json:"proteins" binding:"gte=0"`
	Carbohydrates float64          `json:"carbohydrates" binding:"gte=0"`
	Fats          float64          `json:"fats" binding:"gte=0"`
	DietPlanID    int64            `json:"dietPlanId" binding:"required,gt=0"`
}

// MealUpdateInput omits the plan: a meal never moves between plans.
type MealUpdateInput struct {
	Title         string           `json:"title" binding:"required,max=100"`
	StartTime     domain.TimeOfDay `json:"startTime"`
	EndTime       domain.TimeOfDay `json:"endTime" binding:"gtfield=StartTime"`
	Description   string           `json:"description" binding:"max=500"`
	Contents      string           `json:"contents" binding:"required,max=500"`
	Calories      int              `json:"calories" binding:"gte=0"`
	Proteins      float64          `json:"proteins" binding:"gte=0"`
	Carbohydrates float64          `json:"carbohydrates" binding:"gte=0"`
	Fats          float64          `json:"fats" binding:"gte=0"`
}

type ProgressInput struct {
	ClientID           int64     `json:"clientId" binding:"required,gt=0"`
	Weight             float64   `json:"weight" binding:"required,gt=0"`
	BodyFatPercentage  *float64  `json:"bodyFatPercentage" binding:"omitempty,gte=0,lte=100"`
	MuscleMass         *float64  `json:"muscleMass" binding:"omitempty,gte=0,lte=100"`
	WaistCircumference *float64  `json:"waistCircumference" binding:"omitempty,gte=0"`
	ChestCircumference *float64  `json:"chestCircumference" binding:"omitempty,gte=0"`
	HipCircumference   *float64  `json:"hipCircumference" binding:"omitempty,gte=0"`
	Notes              string    `json:"notes" binding:"max=500"`
	RecordedDate       time.Time `json:"recordedDate" binding:"required,notfuture"`
}

type ProgressUpdateInput struct {
	Weight             float64   `json:"weight" binding:"required,gt=0"`
	BodyFatPercentage  *float64  `json:"bodyFatPercentage" binding:"omitempty,gte=0,lte=100"`
	MuscleMass         *float64  `json:"muscleMass" binding:"omitempty,gte=0,lte=100"`
	WaistCircumference *float64  `json:"waistCircumference" binding:"omitempty,gte=0"`
	ChestCircumference *float64  `json:"chestCircumference" binding:"omitempty,gte=0"`
	HipCircumference   *float64  `json:"hipCircumference" binding:"omitempty,gte=0"`
	Notes              string    `json:"notes" binding:"max=500"`
	RecordedDate       time.Time `json:"recordedDate" binding:"required,notfuture"`
}

type PhotoUploadInput struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoInput struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Responses ---

type UserResponse struct {
	ID             int64         `json:"id"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	Email          string        `json:"email"`
	PhoneNumber    string        `json:"phoneNumber,omitempty"`
	EmailConfirmed bool          `json:"emailConfirmed"`
	Roles          []domain.Role `json:"roles"`
}

type AuthResponse struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type DietitianResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	Specialization string    `json:"specialization"`
	LicenseNumber  string    `json:"licenseNumber"`
	Education      string    `json:"education,omitempty"`
	Biography      string    `json:"biography,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ClientResponse struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"userId"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	DateOfBirth       time.Time `json:"dateOfBirth"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Height            float64   `json:"height"`
	InitialWeight     float64   `json:"initialWeight"`
	CurrentWeight     *float64  `json:"currentWeight,omitempty"`
	MedicalConditions string    `json:"medicalConditions,omitempty"`
	Allergies         string    `json:"allergies,omitempty"`
	DietitianID       *int64    `json:"dietitianId,omitempty"`
	DietitianName     string    `json:"dietitianName,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type DietPlanResponse struct {
	ID                   int64         `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	StartDate            time.Time     `json:"startDate"`
	EndDate              time.Time     `json:"endDate"`
	InitialWeight        float64       `json:"initialWeight"`
	TargetWeight         float64       `json:"targetWeight"`
	ClientID             int64         `json:"clientId"`
	ClientName           string        `json:"clientName,omitempty"`
	CreatedByDietitianID int64         `json:"createdByDietitianId"`
	DietitianName        string        `json:"dietitianName,omitempty"`
	Meals                []domain.Meal `json:"meals"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

type ProgressSummary struct {
	ClientID      int64                   `json:"clientId"`
	ClientName    string                  `json:"clientName"`
	StartWeight   float64                 `json:"startWeight"`
	CurrentWeight float64                 `json:"currentWeight"`
	TargetWeight  *float64                `json:"targetWeight"` // null without a diet plan
	WeightLoss    float64                 `json:"weightLoss"`
	Recent        []domain.ClientProgress `json:"recent"`
}

type PhotoUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PhotoResponse struct {
	domain.ProgressPhoto
	URL string `json:"url"`
}
