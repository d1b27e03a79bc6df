package models

import "time"

type DentalCase struct {
	ID          string
	CaseName    string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
