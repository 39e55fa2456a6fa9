package model

import (
	"pms/shared/model"
	"strings"
	"time"
)

const (
	TableName  = "staff"
	EntityName = "staff"

	FieldID        = "id"
	FieldBranchID  = "branch_id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldRole      = "role"
	FieldActive    = "active"
	FieldLastLogin = "last_login"
)

// Staff is a front desk account. Its branch and role become the session of
// every request it signs.
type Staff struct {
	ID        string     `db:"id"`
	BranchID  string     `db:"branch_id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	FullName  string     `db:"full_name"`
	Role      string     `db:"role"`
	Active    bool       `db:"active"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
