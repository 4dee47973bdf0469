package auth

import "time"

// Employee is an authenticated dispatcher or metrologist account.
type Employee struct {
	ID           int64
	CompanyID    int64
	Email        string
	PasswordHash string
	LastName     string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
}
