package repository

import (
	"context"
	"fmt"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/staff/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gRepo "pms/shared/repository"
	"time"
)

type Staff interface {
	Get(ctx context.Context, id string) (model.Staff, error)
	GetByEmail(ctx context.Context, email string) (model.Staff, error)
	Insert(ctx context.Context, staff model.Staff) error
	UpdatePassword(ctx context.Context, id, hash, actor string, now time.Time) error
	TouchLogin(ctx context.Context, id string, now time.Time) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Staff]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Staff {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Staff](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Staff, error) {
	return r.Repository.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (model.Staff, error) {
	return r.Repository.Get(ctx, EmailFilter(email))
}

func (r *repositoryImpl) Insert(ctx context.Context, staff model.Staff) error {
	err := r.Repository.Insert(ctx, staff)
	if postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation {
		return failure.Conflict(fmt.Sprintf("staff with email %s already exists", staff.Email)) //nolint:wrapcheck
	}

	return err //nolint:wrapcheck
}

type passwordUpdate struct {
	Password string `db:"password"`
}

func (r *repositoryImpl) UpdatePassword(ctx context.Context, id, hash, actor string, now time.Time) error {
	affected, err := r.Update(ctx, shared.TransformFields(passwordUpdate{Password: hash}, actor, now), shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if affected == 0 {
		return failure.NotFound(fmt.Sprintf("staff %s not found", id)) //nolint:wrapcheck
	}

	return nil
}

func (r *repositoryImpl) TouchLogin(ctx context.Context, id string, now time.Time) error {
	_, err := r.Update(ctx, map[string]any{model.FieldLastLogin: now}, shared.FilterByID(id, model.FieldID, model.TableName))

	return err //nolint:wrapcheck
}

func EmailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldEmail, Value: model.NormalizeEmail(email), Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}
