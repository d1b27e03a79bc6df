package models

import "time"

type Appointment struct {
	ID            string
	UserID        string
	ChildName     string
	ChildAge      int
	ParentName    string
	Phone         string
	Service       string
	PreferredDate time.Time
	Notes         *string
	IsConfirmed   bool
	CreatedAt     time.Time
}
