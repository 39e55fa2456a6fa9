package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/room/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gRepo "pms/shared/repository"
	"time"
)

type Room interface {
	Get(ctx context.Context, id string) (model.Room, error)
	GetAllByBranch(ctx context.Context, branchID string) ([]model.Room, error)
	Insert(ctx context.Context, room model.Room) error
	UpdateStatus(ctx context.Context, id string, status model.Status, actor string, now time.Time) (model.Room, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Room, error) {
	return r.Repository.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repositoryImpl) GetAllByBranch(ctx context.Context, branchID string) ([]model.Room, error) {
	rooms, err := r.GetAll(ctx, gDto.QueryParams{}, shared.FilterByID(branchID, model.FieldBranchID, model.TableName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	model.SortByNumber(rooms)

	return rooms, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, room model.Room) error {
	err := r.Repository.Insert(ctx, room)
	if postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation {
		return failure.Conflict(fmt.Sprintf("room %s already exists in branch", room.Number)) //nolint:wrapcheck
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id string, status model.Status, actor string, now time.Time) (model.Room, error) {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	affected, err := r.Update(ctx, shared.TransformFields(struct {
		Status model.Status `db:"status"`
	}{Status: status}, actor, now), filter)
	if err != nil {
		return model.Room{}, err //nolint:wrapcheck
	}

	if affected == 0 {
		return model.Room{}, failure.NotFound(fmt.Sprintf("room %s not found", id)) //nolint:wrapcheck
	}

	return r.Repository.Get(ctx, filter)
}
