package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict("already exists", map[string]any{"email": "a@b.c"})
	mapped := ToDomainError(original)
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("unexpected mapping: %+v", mapped)
	}
	if mapped.Details["email"] != "a@b.c" {
		t.Fatalf("details lost: %+v", mapped.Details)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected not found mapping, got %+v", mapped)
	}
}

func TestToDomainErrorMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "identities_email_key"}
	mapped := ToDomainError(fmt.Errorf("insert identity: %w", pgErr))
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected conflict mapping, got %+v", mapped)
	}
	if mapped.Details["constraint"] != "identities_email_key" {
		t.Fatalf("constraint name lost: %+v", mapped.Details)
	}

	otherErr := &pgconn.PgError{Code: "23503"}
	if mapped := ToDomainError(otherErr); mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("non-unique constraint errors must stay internal, got %+v", mapped)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection refused")
	mapped := ToDomainError(cause)
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal mapping, got %+v", mapped)
	}
	if !errors.Is(mapped, cause) {
		t.Fatal("expected cause to stay wrapped")
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil error must map to nil")
	}
}
