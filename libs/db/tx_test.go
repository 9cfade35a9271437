package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func TestWithTxCommitsAndJoins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), mock, func(ctx context.Context) error {
		if TxFromContext(ctx) == nil {
			t.Fatal("expected transaction on context")
		}
		// Nested call must not begin a second transaction.
		return WithTx(ctx, mock, func(inner context.Context) error {
			_, err := Conn(inner, mock).Exec(inner, "UPDATE appointments SET status = 'Confirmed'")
			return err
		})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	sentinel := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithTx(context.Background(), mock, func(context.Context) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})
	if !IsExclusionViolation(excl) || IsUniqueViolation(excl) {
		t.Fatalf("misclassified exclusion violation")
	}
	if ConstraintName(excl) != "appointments_no_overlap" {
		t.Fatalf("unexpected constraint %q", ConstraintName(excl))
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatal("plain error is not a pg error")
	}
}
