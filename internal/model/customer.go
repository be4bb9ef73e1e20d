package model

import "time"

// Customer is a hotel guest.  Email is unique.
type Customer struct {
    ID           uint64    `json:"id"`
    FirstName    string    `json:"first_name"`
    LastName     string    `json:"last_name"`
    Email        string    `json:"email"`
    Phone        string    `json:"phone"`
    Address      string    `json:"address"`
    DateCreation time.Time `json:"date_creation"`
}
