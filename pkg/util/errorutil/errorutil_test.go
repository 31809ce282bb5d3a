package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorMapsMissingRowsToNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"pgx no rows", pgx.ErrNoRows},
		{"sql no rows", sql.ErrNoRows},
		{"wrapped pgx no rows", fmt.Errorf("load team: %w", pgx.ErrNoRows)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			domainErr := ToDomainError(tc.err)
			if domainErr.HTTPStatus != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", domainErr.HTTPStatus)
			}
			if domainErr.Code != "NOT_FOUND" {
				t.Fatalf("code = %s, want NOT_FOUND", domainErr.Code)
			}
		})
	}
}

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	err := NewConflict("all candidate teams are at capacity", nil)
	domainErr := ToDomainError(fmt.Errorf("assign: %w", err))
	if domainErr.HTTPStatus != http.StatusConflict {
		t.Fatalf("status = %d, want 409", domainErr.HTTPStatus)
	}
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	if domainErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", domainErr.HTTPStatus)
	}
	if domainErr.Code != "INTERNAL_ERROR" {
		t.Fatalf("code = %s, want INTERNAL_ERROR", domainErr.Code)
	}
}
