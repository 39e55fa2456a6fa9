package model

import (
	"pms/shared/model"
)

const (
	TableName  = "guests"
	EntityName = "guest"

	FieldID             = "id"
	FieldFullName       = "full_name"
	FieldDocumentType   = "document_type"
	FieldDocumentNumber = "document_number"
	FieldPhone          = "phone"
	FieldEmail          = "email"
)

type DocumentType string

const (
	DocumentDNI      DocumentType = "dni"
	DocumentPassport DocumentType = "passport"
	DocumentRUC      DocumentType = "ruc"
	DocumentOther    DocumentType = "other"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentDNI, DocumentPassport, DocumentRUC, DocumentOther:
		return true
	default:
		return false
	}
}

// Guest is shared across branches. FullName and the document are fixed at
// creation; only contact fields change afterwards.
type Guest struct {
	ID             string       `db:"id"`
	FullName       string       `db:"full_name"`
	DocumentType   DocumentType `db:"document_type"`
	DocumentNumber string       `db:"document_number"`
	Phone          string       `db:"phone"`
	Email          *string      `db:"email"`
	model.Metadata
}

func (g Guest) HasDocument() bool {
	return g.DocumentType != "" && g.DocumentNumber != ""
}

// Contact is the mutable part of a guest.
type Contact struct {
	Phone *string `db:"phone"`
	Email *string `db:"email"`
}

func (c Contact) IsEmpty() bool {
	return c.Phone == nil && c.Email == nil
}
