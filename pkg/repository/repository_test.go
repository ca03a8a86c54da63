package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/forge/pkg/repository"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	check := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, errConflict},
		{"other pg error", check, check},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errConflict)
			if got != tt.want {
				t.Errorf("MapError = %v, want %v", got, tt.want)
			}
		})
	}
}
