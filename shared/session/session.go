// Package session carries the caller identity (actor and branch) that every
// domain operation receives as an explicit argument.
package session

import (
	"context"
	"pms/shared/constant"
	"pms/shared/failure"
)

type Session struct {
	ActorID  string
	BranchID string
	Role     string
}

func (s Session) Validate() error {
	if s.ActorID == constant.Empty {
		return failure.Unauthorized("session has no actor") //nolint:wrapcheck
	}

	if s.BranchID == constant.Empty {
		return failure.BadRequestFromString("session has no branch") //nolint:wrapcheck
	}

	return nil
}

// CanAccessBranch reports whether the session may read or write data of branchID.
// Admins are not bound to a branch.
func (s Session) CanAccessBranch(branchID string) bool {
	return s.Role == constant.RoleAdmin || s.BranchID == branchID
}

func (s Session) HasRole(roles ...string) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}

	return false
}

type contextKey struct{}

// NewContext is used by the HTTP transport only, to hand the authenticated
// session from the middleware to the handler.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)

	return s, ok
}
