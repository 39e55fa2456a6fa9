package service

import (
	"context"
	"errors"
	"fmt"
	"pms/config"
	"pms/infras/jwt"
	"pms/infras/otel"
	"pms/internal/domains/auth/model/dto"
	staffRepo "pms/internal/domains/staff/repository"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/password"
	"pms/shared/session"

	"github.com/rs/zerolog/log"
)

var errInvalidCredentials = failure.Unauthorized("invalid email or password")

type Auth interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Register(ctx context.Context, sess session.Session, req dto.RegisterRequest) (dto.StaffResponse, error)
	ChangePassword(ctx context.Context, sess session.Session, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	staffRepo  staffRepo.Staff
	cfg        *config.Config
	clock      clock.Clock
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(staffRepo staffRepo.Staff, cfg *config.Config, clk clock.Clock, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		staffRepo:  staffRepo,
		cfg:        cfg,
		clock:      clk,
		otel:       otel,
		jwtService: jwt,
	}
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	staff, err := s.staffRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff by email")

		return res, fmt.Errorf("failed to get staff: %w", err)
	}

	if staff.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with unknown email")

		return res, errInvalidCredentials
	}

	if err := password.Verify(req.Password, staff.Password); err != nil {
		if !errors.Is(err, password.ErrInvalidPassword) {
			log.Error().Err(err).Str("staff_id", staff.ID).Msg("failed to verify password")
		}

		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, errInvalidCredentials
	}

	if !staff.Active {
		return res, failure.Unauthorized("staff account is deactivated") //nolint:wrapcheck
	}

	sess := session.Session{ActorID: staff.ID, BranchID: staff.BranchID, Role: staff.Role}

	token, err := s.jwtService.GenerateAccessToken(sess)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")

		return res, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.staffRepo.TouchLogin(ctx, staff.ID, s.clock.Now()); err != nil {
		log.Warn().Err(err).Str("staff_id", staff.ID).Msg("failed to update last login")
	}

	res.AccessToken = token
	res.ExpiresIn = int64(s.cfg.JWT.AccessExpireMin) * 60
	res.Staff.FromModel(staff)

	return res, nil
}

func (s *serviceImpl) Register(ctx context.Context, sess session.Session, req dto.RegisterRequest) (res dto.StaffResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err := sess.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	branchID := req.BranchID
	if branchID == constant.Empty {
		branchID = sess.BranchID
	}

	switch {
	case !sess.HasRole(constant.RoleAdmin, constant.RoleManager):
		return res, failure.ForbiddenError
	case !sess.CanAccessBranch(branchID):
		return res, failure.BranchRestricted
	case req.Role == constant.RoleAdmin && sess.Role != constant.RoleAdmin:
		return res, failure.ForbiddenError
	}

	existing, err := s.staffRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to check staff email")

		return res, fmt.Errorf("failed to check staff email: %w", err)
	}

	if existing.ID != constant.Empty {
		return res, failure.Conflict("email already registered") //nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := req.ToModel(branchID, hashedPassword, sess.ActorID, s.clock.Now())

	if err = s.staffRepo.Insert(ctx, staff); err != nil {
		log.Error().Err(err).Msg("failed to create staff")

		return res, fmt.Errorf("failed to create staff: %w", err)
	}

	res.FromModel(staff)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, sess session.Session, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err := sess.Validate(); err != nil {
		return err //nolint:wrapcheck
	}

	staff, err := s.staffRepo.Get(ctx, sess.ActorID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff")

		return fmt.Errorf("failed to get staff: %w", err)
	}

	if staff.ID == constant.Empty {
		return failure.NotFound("staff not found") // nolint:wrapcheck
	}

	if err := password.Verify(req.CurrentPassword, staff.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect") //nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.staffRepo.UpdatePassword(ctx, staff.ID, hashedPassword, sess.ActorID, s.clock.Now()); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
