package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/guest/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gRepo "pms/shared/repository"
	"time"
)

type Guest interface {
	Get(ctx context.Context, id string) (model.Guest, error)
	GetByDocument(ctx context.Context, documentType model.DocumentType, documentNumber string) (model.Guest, error)
	Search(ctx context.Context, term string, limit int) ([]model.Guest, error)
	Insert(ctx context.Context, guest model.Guest) error
	UpdateContact(ctx context.Context, id string, contact model.Contact, actor string, now time.Time) (model.Guest, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Guest]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Guest {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Guest](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Guest, error) {
	return r.Repository.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repositoryImpl) GetByDocument(ctx context.Context, documentType model.DocumentType, documentNumber string) (model.Guest, error) {
	return r.Repository.Get(ctx, DocumentFilter(documentType, documentNumber))
}

// Search matches the term against the full name or the document number.
func (r *repositoryImpl) Search(ctx context.Context, term string, limit int) ([]model.Guest, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{Field: model.FieldFullName, Value: term, Operator: gDto.FilterOperatorLike, Table: model.TableName},
			gDto.Filter{Field: model.FieldDocumentNumber, Value: term, Operator: gDto.FilterOperatorLike, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{Limit: limit, SortBy: model.FieldFullName, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, filter)
}

func (r *repositoryImpl) Insert(ctx context.Context, guest model.Guest) error {
	err := r.Repository.Insert(ctx, guest)
	if postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation {
		return failure.Conflict(fmt.Sprintf("guest with document %s %s already exists", guest.DocumentType, guest.DocumentNumber)) //nolint:wrapcheck
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) UpdateContact(ctx context.Context, id string, contact model.Contact, actor string, now time.Time) (model.Guest, error) {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	affected, err := r.Update(ctx, shared.TransformFields(contact, actor, now), filter)
	if err != nil {
		return model.Guest{}, err //nolint:wrapcheck
	}

	if affected == 0 {
		return model.Guest{}, failure.NotFound(fmt.Sprintf("guest %s not found", id)) //nolint:wrapcheck
	}

	return r.Repository.Get(ctx, filter)
}

// DocumentFilter selects the guest holding a document.
func DocumentFilter(documentType model.DocumentType, documentNumber string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldDocumentType, Value: documentType, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldDocumentNumber, Value: documentNumber, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}
