package password_test

import (
	"errors"
	"pms/shared/password"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("front-desk-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %s", hash)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{name: "matching password", password: "front-desk-42", hash: hash},
		{name: "wrong password", password: "front-desk-43", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty hash", password: "front-desk-42", hash: "", wantErr: password.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHash_Empty(t *testing.T) {
	if _, err := password.Hash(""); !errors.Is(err, password.ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHash_Salted(t *testing.T) {
	first, _ := password.Hash("same-secret")
	second, _ := password.Hash("same-secret")

	if first == second {
		t.Error("expected distinct hashes for the same password")
	}
}
