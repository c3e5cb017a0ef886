package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.uber.org/multierr"
)

func TestDumpPostgresDetails(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       string
		constraint string
	}{
		{
			name:       "pgx",
			err:        Wrap(CodeConflict, &pgconn.PgError{Code: "23505", ConstraintName: "members_event_name_key"}, "create member"),
			code:       "23505",
			constraint: "members_event_name_key",
		},
		{
			name:       "pq",
			err:        fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "expenses_payer_fk"}),
			code:       "23503",
			constraint: "expenses_payer_fk",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dump := Dump(tc.err)
			if dump.PGCode != tc.code || dump.PGConstraint != tc.constraint {
				t.Fatalf("unexpected dump %+v", dump)
			}
		})
	}
}

func TestDumpCombinedErrors(t *testing.T) {
	combined := multierr.Combine(stdErrors.New("expense 1 invalid"), stdErrors.New("expense 2 invalid"))
	dump := Dump(Wrap(CodeInvalidExpense, combined, "validate ledger"))

	if dump.Code != CodeInvalidExpense {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Combined) != 2 {
		t.Fatalf("expected both combined errors, got %v", dump.Combined)
	}
}

func TestDumpNil(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", dump)
	}
}
