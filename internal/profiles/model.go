package profiles

import "time"

// Profile holds optional personal details used to tailor nutrition advice.
type Profile struct {
	ID                 string    `json:"id"`
	FullName           *string   `json:"fullName"`
	Age                *int      `json:"age"`
	Gender             *string   `json:"gender"`
	HeightCM           *float64  `json:"heightCm"`
	WeightKG           *float64  `json:"weightKg"`
	DietaryPreferences *string   `json:"dietaryPreferences"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
