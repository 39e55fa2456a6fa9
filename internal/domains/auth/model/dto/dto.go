package dto

import (
	staffModel "pms/internal/domains/staff/model"
	gModel "pms/shared/model"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type StaffResponse struct {
	ID       string `json:"id"`
	BranchID string `json:"branch_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (s *StaffResponse) FromModel(model staffModel.Staff) {
	s.ID = model.ID
	s.BranchID = model.BranchID
	s.Email = model.Email
	s.FullName = model.FullName
	s.Role = model.Role
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	Staff       StaffResponse `json:"staff"`
}

// RegisterRequest creates a staff account. Managers may only register staff of
// their own branch, which is then taken from the session.
type RegisterRequest struct {
	BranchID string `json:"branch_id"`
	Email    string `json:"email"     validate:"required,email,max=150"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=150"`
	Role     string `json:"role"      validate:"required,oneof=admin manager receptionist"`
}

func (r *RegisterRequest) ToModel(branchID, hashedPassword, actor string, now time.Time) staffModel.Staff {
	return staffModel.Staff{
		ID:       uuid.NewString(),
		BranchID: branchID,
		Email:    staffModel.NormalizeEmail(r.Email),
		Password: hashedPassword,
		FullName: strings.TrimSpace(r.FullName),
		Role:     r.Role,
		Active:   true,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}
