package models

import "time"

// Contact represents a person the firm plans for or prospects.
type Contact struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Profession string    `json:"profession"`
	IncomeBand string    `json:"income_band"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// LostReason is a catalog entry backing Opportunity.LostReasonID.
type LostReason struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
