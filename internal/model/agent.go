package model

import "time"

// Roles carried in session tokens.
const (
    RoleAgent = "AGENT"
    RoleRoot  = "ROOT"
)

// Agent is a staff account stored in the `agents` table.  The plain
// password is never stored; only its bcrypt hash.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – bcrypt hash of the password.
//  FullName     – display name.
//  DateCreation – creation timestamp.
type Agent struct {
    ID           uint64    `json:"id"`
    Username     string    `json:"username"`
    PasswordHash string    `json:"-"`
    FullName     string    `json:"full_name"`
    DateCreation time.Time `json:"date_creation"`
}
