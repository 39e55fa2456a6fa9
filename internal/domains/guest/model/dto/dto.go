package dto

import (
	"pms/internal/domains/guest/model"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateGuestRequest struct {
	ID             string `json:"id"              validate:"omitempty,uuid"`
	FullName       string `json:"full_name"       validate:"required,max=150"`
	DocumentType   string `json:"document_type"   validate:"required,oneof=dni passport ruc other"`
	DocumentNumber string `json:"document_number" validate:"required,max=30"`
	Phone          string `json:"phone"           validate:"omitempty,max=30"`
	Email          string `json:"email"           validate:"omitempty,email,max=150"`
}

// ToModel keeps a caller supplied id so that reservations can reference a
// known guest; otherwise a new id is generated.
func (c *CreateGuestRequest) ToModel(actor string, now time.Time) model.Guest {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	guest := model.Guest{
		ID:             id,
		FullName:       strings.TrimSpace(c.FullName),
		DocumentType:   model.DocumentType(c.DocumentType),
		DocumentNumber: strings.TrimSpace(c.DocumentNumber),
		Phone:          strings.TrimSpace(c.Phone),
		Metadata:       gModel.NewMetadata(actor, now),
	}

	if email := strings.TrimSpace(c.Email); email != "" {
		guest.Email = &email
	}

	return guest
}

type UpdateContactRequest struct {
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Email *string `json:"email" validate:"omitempty,email,max=150"`
}

func (u *UpdateContactRequest) ToModel() model.Contact {
	return model.Contact{
		Phone: u.Phone,
		Email: u.Email,
	}
}

type GuestResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	gDto.Metadata
}

func (r *GuestResponse) FromModel(model model.Guest) {
	r.ID = model.ID
	r.FullName = model.FullName
	r.DocumentType = string(model.DocumentType)
	r.DocumentNumber = model.DocumentNumber
	r.Phone = model.Phone

	if model.Email != nil {
		r.Email = *model.Email
	}

	r.Metadata.FromModel(model.Metadata)
}

type SearchGuestsResponse struct {
	Guests []GuestResponse `json:"guests"`
}

func (r *SearchGuestsResponse) FromModels(models []model.Guest) {
	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}
