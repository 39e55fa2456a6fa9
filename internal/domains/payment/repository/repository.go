package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/payment/model"
	resModel "pms/internal/domains/reservation/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	"pms/shared/failure"
	gRepo "pms/shared/repository"
	"strings"

	"github.com/jmoiron/sqlx"
)

var (
	// the payment is applied only while it fits the balance of an open reservation
	applyPaymentQuery = fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s + $1, %[3]s = %[3]s + 1, %[4]s = $2, %[5]s = $3
WHERE %[6]s = $4 AND %[2]s + $1 <= %[7]s AND %[8]s NOT IN ('%[9]s', '%[10]s')`,
		resModel.TableName, resModel.FieldPaidAmount, resModel.FieldVersion, constant.FieldModifiedAt, constant.FieldModifiedBy,
		resModel.FieldID, resModel.FieldTotalAmount, resModel.FieldStatus, resModel.StatusCancelled, resModel.StatusNoShow)

	insertColumns = []string{
		model.FieldID, model.FieldReservationID, model.FieldAmount, model.FieldMethod, model.FieldReference,
		model.FieldPaymentDate, model.FieldProcessedBy, model.FieldIdempotencyKey, model.FieldCreatedAt,
	}

	insertPaymentQuery = fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s) RETURNING %s, %s",
		model.TableName, strings.Join(insertColumns, ", "), strings.Join(insertColumns, ", :"), model.FieldSequence, model.FieldCreatedAt)
)

type Payment interface {
	// Record applies the payment to its reservation and appends it, in one transaction.
	Record(ctx context.Context, payment model.Payment) (model.Payment, error)
	GetAllByReservation(ctx context.Context, reservationID string) ([]model.Payment, error)
	GetByIdempotencyKey(ctx context.Context, reservationID, key string) (model.Payment, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
	reservations gRepo.Repository[resModel.Reservation]
	db           *postgres.Connection
	cfg          *config.Config
	otel         otel.Otel
}

func New(db *postgres.Connection, cfg *config.Config, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository:   gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
		reservations: gRepo.NewRepository[resModel.Reservation](resModel.EntityName, resModel.TableName, resModel.FieldID, db, otel),
		db:           db,
		cfg:          cfg,
		otel:         otel,
	}
}

func (r *repositoryImpl) Record(ctx context.Context, payment model.Payment) (model.Payment, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.Record")
	defer scope.End()

	recorded := payment

	err := r.db.Transact(ctx, r.cfg.App.Reservation.TxMaxRetry, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, applyPaymentQuery,
			payment.Amount, payment.CreatedAt, payment.ProcessedBy, payment.ReservationID)
		if err != nil {
			return fmt.Errorf("failed to apply payment to reservation %s: %w", payment.ReservationID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}

		if affected == 0 {
			return r.rejection(ctx, tx, payment)
		}

		rows, err := sqlx.NamedQueryContext(ctx, tx, insertPaymentQuery, payment)
		if err != nil {
			if postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation {
				return model.ErrDuplicatePayment
			}

			return fmt.Errorf("failed to insert payment: %w", err)
		}
		defer rows.Close()

		if rows.Next() {
			if err = rows.Scan(&recorded.Sequence, &recorded.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan payment: %w", err)
			}
		}

		return rows.Err() //nolint:wrapcheck
	})
	if err != nil {
		scope.TraceIfError(err)

		return model.Payment{}, err //nolint:wrapcheck
	}

	return recorded, nil
}

// rejection explains why the conditional update matched no row.
func (r *repositoryImpl) rejection(ctx context.Context, tx *sqlx.Tx, payment model.Payment) error {
	res, err := r.reservations.GetTx(ctx, tx, shared.FilterByID(payment.ReservationID, resModel.FieldID, resModel.TableName))
	if err != nil {
		return err //nolint:wrapcheck
	}

	switch {
	case res.ID == constant.Empty:
		return failure.NotFound(fmt.Sprintf("reservation %s not found", payment.ReservationID)) //nolint:wrapcheck
	case res.Status == resModel.StatusCancelled || res.Status == resModel.StatusNoShow:
		return model.ErrReservationClosed
	default:
		return &model.OverPaymentError{Amount: payment.Amount, Balance: res.Balance()}
	}
}

func (r *repositoryImpl) GetAllByReservation(ctx context.Context, reservationID string) ([]model.Payment, error) {
	params := gDto.QueryParams{SortBy: model.FieldSequence, SortDir: gDto.SortDirAsc}

	payments, err := r.GetAll(ctx, params, shared.FilterByID(reservationID, model.FieldReservationID, model.TableName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	model.Sort(payments)

	return payments, nil
}

func (r *repositoryImpl) GetByIdempotencyKey(ctx context.Context, reservationID, key string) (model.Payment, error) {
	filter := shared.FilterByID(reservationID, model.FieldReservationID, model.TableName)
	filter.Add(gDto.Filter{Field: model.FieldIdempotencyKey, Value: key, Operator: gDto.FilterOperatorEq, Table: model.TableName})

	return r.Get(ctx, filter)
}
