package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/infras/postgres"
	guestModel "pms/internal/domains/guest/model"
	guestRepository "pms/internal/domains/guest/repository"
	"pms/internal/domains/reservation/model"
	roomModel "pms/internal/domains/room/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gRepo "pms/shared/repository"

	"github.com/jmoiron/sqlx"
)

const (
	argRangeCheckIn   = "range_check_in"
	argRangeCheckOut  = "range_check_out"
	argCheckInFrom    = "check_in_from"
	argCheckInTo      = "check_in_to"
	argExcludeID      = "exclude_id"
	argCurrentVersion = "current_version"

	savepointGuest          = "guest_upsert"
	constraintGuestDocument = "guests_document_unique"

	nextSequenceQuery = `INSERT INTO confirmation_counters (prefix, year, value) VALUES ($1, $2, 1)
ON CONFLICT (prefix, year) DO UPDATE SET value = confirmation_counters.value + 1
RETURNING value`
)

// BlockingQuery selects blocking reservations overlapping Range. Empty ids do not filter.
type BlockingQuery struct {
	BranchID  string
	RoomID    string
	Range     model.DateRange
	ExcludeID string
}

type Reservation interface {
	Get(ctx context.Context, id string) (model.Reservation, error)
	// GetPrimary reads from the write pool so it never sees a lagging replica.
	GetPrimary(ctx context.Context, id string) (model.Reservation, error)
	GetAllByBranch(ctx context.Context, branchID string, filter model.ListFilter) ([]model.Reservation, error)
	GetBlocking(ctx context.Context, query BlockingQuery) ([]model.Reservation, error)
	// Create locks the room, re-checks conflicts, upserts the guest and inserts the
	// reservation with a fresh confirmation code, all in one transaction.
	Create(ctx context.Context, booking model.Booking) (model.Reservation, error)
	// UpdateStatus persists the lifecycle fields of reservation if its version is unchanged.
	UpdateStatus(ctx context.Context, reservation model.Reservation) (model.Reservation, error)
	// Reschedule persists new dates, room and total after re-checking conflicts.
	Reschedule(ctx context.Context, reservation model.Reservation) (model.Reservation, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	rooms  gRepo.Repository[roomModel.Room]
	guests gRepo.Repository[guestModel.Guest]
	db     *postgres.Connection
	cfg    *config.Config
	otel   otel.Otel
}

func New(db *postgres.Connection, cfg *config.Config, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		rooms:      gRepo.NewRepository[roomModel.Room](roomModel.EntityName, roomModel.TableName, roomModel.FieldID, db, otel),
		guests:     gRepo.NewRepository[guestModel.Guest](guestModel.EntityName, guestModel.TableName, guestModel.FieldID, db, otel),
		db:         db,
		cfg:        cfg,
		otel:       otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Reservation, error) {
	return r.Repository.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repositoryImpl) GetPrimary(ctx context.Context, id string) (model.Reservation, error) {
	return r.Repository.GetPrimary(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repositoryImpl) GetAllByBranch(ctx context.Context, branchID string, filter model.ListFilter) ([]model.Reservation, error) {
	group := shared.FilterByID(branchID, model.FieldBranchID, model.TableName)

	if filter.Status != "" {
		group.Add(gDto.Filter{Field: model.FieldStatus, Value: filter.Status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if filter.Source != "" {
		group.Add(gDto.Filter{Field: model.FieldSource, Value: filter.Source, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if !filter.CheckInFrom.IsZero() {
		group.Add(gDto.Filter{
			ArgName: argCheckInFrom, Field: model.FieldCheckIn, Value: filter.CheckInFrom,
			Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName,
		})
	}

	if !filter.CheckInTo.IsZero() {
		group.Add(gDto.Filter{
			ArgName: argCheckInTo, Field: model.FieldCheckIn, Value: filter.CheckInTo,
			Operator: gDto.FilterOperatorLessEq, Table: model.TableName,
		})
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldCheckIn, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, group)
}

func (r *repositoryImpl) GetBlocking(ctx context.Context, query BlockingQuery) ([]model.Reservation, error) {
	return r.GetAll(ctx, gDto.QueryParams{}, BlockingFilter(query))
}

func (r *repositoryImpl) Create(ctx context.Context, booking model.Booking) (model.Reservation, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.Create")
	defer scope.End()

	var created model.Reservation

	err := r.db.Transact(ctx, r.cfg.App.Reservation.TxMaxRetry, func(tx *sqlx.Tx) error {
		res := booking.Reservation

		if err := r.lockRoom(ctx, tx, res.RoomID, res.BranchID); err != nil {
			return err
		}

		if err := r.checkConflicts(ctx, tx, BlockingQuery{RoomID: res.RoomID, Range: res.Range()}); err != nil {
			return err
		}

		guestID, err := r.upsertGuest(ctx, tx, res.GuestID, booking.Guest)
		if err != nil {
			return err
		}

		res.GuestID = guestID

		year := res.CreatedAt.Year()

		var sequence int64
		if err = tx.QueryRowxContext(ctx, nextSequenceQuery, prefixOf(booking), year).Scan(&sequence); err != nil {
			return fmt.Errorf("failed to allocate confirmation code: %w", err)
		}

		res.ConfirmationCode = model.ConfirmationCode(prefixOf(booking), year, sequence)

		if err = r.InsertTx(ctx, tx, res); err != nil {
			return mapConstraint(err, res.RoomID)
		}

		created, err = r.GetTx(ctx, tx, shared.FilterByID(res.ID, model.FieldID, model.TableName))

		return err //nolint:wrapcheck
	})
	if err != nil {
		scope.TraceIfError(err)

		return model.Reservation{}, err //nolint:wrapcheck
	}

	return created, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, reservation model.Reservation) (model.Reservation, error) {
	fields := map[string]any{
		model.FieldStatus:             reservation.Status,
		model.FieldCheckedInAt:        reservation.CheckedInAt,
		model.FieldCheckedOutAt:       reservation.CheckedOutAt,
		model.FieldCancelledAt:        reservation.CancelledAt,
		model.FieldCancellationReason: reservation.CancellationReason,
		model.FieldVersion:            reservation.Version + 1,
		constant.FieldModifiedAt:      reservation.ModifiedAt,
		constant.FieldModifiedBy:      reservation.ModifiedBy,
	}

	var updated model.Reservation

	err := r.db.Transact(ctx, r.cfg.App.Reservation.TxMaxRetry, func(tx *sqlx.Tx) error {
		affected, err := r.UpdateTx(ctx, tx, fields, VersionFilter(reservation.ID, reservation.Version))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return model.ErrConcurrentUpdate
		}

		updated, err = r.GetTx(ctx, tx, shared.FilterByID(reservation.ID, model.FieldID, model.TableName))

		return err //nolint:wrapcheck
	})
	if err != nil {
		return model.Reservation{}, err //nolint:wrapcheck
	}

	return updated, nil
}

func (r *repositoryImpl) Reschedule(ctx context.Context, reservation model.Reservation) (model.Reservation, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.Reschedule")
	defer scope.End()

	var updated model.Reservation

	err := r.db.Transact(ctx, r.cfg.App.Reservation.TxMaxRetry, func(tx *sqlx.Tx) error {
		if err := r.lockRoom(ctx, tx, reservation.RoomID, reservation.BranchID); err != nil {
			return err
		}

		query := BlockingQuery{RoomID: reservation.RoomID, Range: reservation.Range(), ExcludeID: reservation.ID}
		if err := r.checkConflicts(ctx, tx, query); err != nil {
			return err
		}

		fields := map[string]any{
			model.FieldRoomID:        reservation.RoomID,
			model.FieldCheckIn:       reservation.CheckIn,
			model.FieldCheckOut:      reservation.CheckOut,
			model.FieldNights:        reservation.Nights,
			model.FieldTotalAmount:   reservation.TotalAmount,
			model.FieldVersion:       reservation.Version + 1,
			constant.FieldModifiedAt: reservation.ModifiedAt,
			constant.FieldModifiedBy: reservation.ModifiedBy,
		}

		affected, err := r.UpdateTx(ctx, tx, fields, VersionFilter(reservation.ID, reservation.Version))
		if err != nil {
			return mapConstraint(err, reservation.RoomID)
		}

		if affected == 0 {
			return model.ErrConcurrentUpdate
		}

		updated, err = r.GetTx(ctx, tx, shared.FilterByID(reservation.ID, model.FieldID, model.TableName))

		return err //nolint:wrapcheck
	})
	if err != nil {
		scope.TraceIfError(err)

		return model.Reservation{}, err //nolint:wrapcheck
	}

	return updated, nil
}

func (r *repositoryImpl) lockRoom(ctx context.Context, tx *sqlx.Tx, roomID, branchID string) error {
	room, err := r.rooms.GetForUpdateTx(ctx, tx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if room.ID == constant.Empty || room.BranchID != branchID {
		return failure.NotFound(fmt.Sprintf("room %s not found", roomID)) //nolint:wrapcheck
	}

	return nil
}

func (r *repositoryImpl) checkConflicts(ctx context.Context, tx *sqlx.Tx, query BlockingQuery) error {
	conflicts, err := r.GetAllTx(ctx, tx, gDto.QueryParams{}, BlockingFilter(query))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if len(conflicts) == 0 {
		return nil
	}

	ids := make([]string, len(conflicts))
	for i, conflict := range conflicts {
		ids[i] = conflict.ID
	}

	return &model.RoomUnavailableError{RoomID: query.RoomID, ConflictingIDs: ids}
}

// upsertGuest returns guestID when set, otherwise the id of the guest holding the
// draft's document, inserting the draft when nobody does.
func (r *repositoryImpl) upsertGuest(ctx context.Context, tx *sqlx.Tx, guestID string, draft *guestModel.Guest) (string, error) {
	if guestID != constant.Empty {
		guest, err := r.guests.GetTx(ctx, tx, shared.FilterByID(guestID, guestModel.FieldID, guestModel.TableName))
		if err != nil {
			return "", err //nolint:wrapcheck
		}

		if guest.ID == constant.Empty {
			return "", failure.NotFound(fmt.Sprintf("guest %s not found", guestID)) //nolint:wrapcheck
		}

		return guest.ID, nil
	}

	if draft == nil {
		return "", failure.BadRequestFromString("a guest id or guest details are required") //nolint:wrapcheck
	}

	if draft.HasDocument() {
		existing, err := r.guests.GetTx(ctx, tx, guestRepository.DocumentFilter(draft.DocumentType, draft.DocumentNumber))
		if err != nil {
			return "", err //nolint:wrapcheck
		}

		if existing.ID != constant.Empty {
			return existing.ID, nil
		}
	}

	if !draft.HasDocument() {
		if err := r.guests.InsertTx(ctx, tx, *draft); err != nil {
			return "", err //nolint:wrapcheck
		}

		return draft.ID, nil
	}

	// A concurrent booking may insert the same document first; the savepoint keeps
	// the transaction usable so the committed guest can be read back.
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepointGuest); err != nil {
		return "", fmt.Errorf("failed to create guest savepoint: %w", err)
	}

	err := r.guests.InsertTx(ctx, tx, *draft)
	if err == nil {
		return draft.ID, nil
	}

	if postgres.ConstraintName(err) != constraintGuestDocument {
		return "", err //nolint:wrapcheck
	}

	if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointGuest); rbErr != nil {
		return "", fmt.Errorf("failed to roll back guest savepoint: %w", rbErr)
	}

	existing, err := r.guests.GetTx(ctx, tx, guestRepository.DocumentFilter(draft.DocumentType, draft.DocumentNumber))
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	if existing.ID == constant.Empty {
		return "", failure.Conflict(fmt.Sprintf("guest with document %s %s already exists", draft.DocumentType, draft.DocumentNumber)) //nolint:wrapcheck
	}

	return existing.ID, nil
}

func prefixOf(booking model.Booking) string {
	if booking.ConfirmationPrefix == constant.Empty {
		return model.DefaultConfirmationPrefix
	}

	return booking.ConfirmationPrefix
}

// mapConstraint turns the overlap exclusion constraint into RoomUnavailable.
func mapConstraint(err error, roomID string) error {
	if postgres.ErrorCode(err) == constant.PqErrorCodeExclusionViolation {
		return &model.RoomUnavailableError{RoomID: roomID}
	}

	return err
}

// BlockingFilter selects pending, confirmed and checked-in reservations overlapping the range.
func BlockingFilter(query BlockingQuery) gDto.FilterGroup {
	group := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Value: model.BlockingStatuses(), Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{
				ArgName: argRangeCheckOut, Field: model.FieldCheckIn, Value: query.Range.CheckOut,
				Operator: gDto.FilterOperatorLess, Table: model.TableName,
			},
			gDto.Filter{
				ArgName: argRangeCheckIn, Field: model.FieldCheckOut, Value: query.Range.CheckIn,
				Operator: gDto.FilterOperatorGreater, Table: model.TableName,
			},
		},
	}

	if query.BranchID != constant.Empty {
		group.Add(gDto.Filter{Field: model.FieldBranchID, Value: query.BranchID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if query.RoomID != constant.Empty {
		group.Add(gDto.Filter{Field: model.FieldRoomID, Value: query.RoomID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if query.ExcludeID != constant.Empty {
		group.Add(gDto.Filter{
			ArgName: argExcludeID, Field: model.FieldID, Value: query.ExcludeID,
			Operator: gDto.FilterOperatorNotEq, Table: model.TableName,
		})
	}

	return group
}

// VersionFilter matches the reservation only while it still has version.
func VersionFilter(id string, version int) gDto.FilterGroup {
	group := shared.FilterByID(id, model.FieldID, model.TableName)
	group.Add(gDto.Filter{
		ArgName: argCurrentVersion, Field: model.FieldVersion, Value: version,
		Operator: gDto.FilterOperatorEq, Table: model.TableName,
	})

	return group
}
