package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{New(ErrInvalidInput, "bad value").AtRow(4, "humor_type_score"), `invalid input: bad value (row 4, column "humor_type_score")`},
		{New(ErrInvalidInput, "bad row").AtRow(2, ""), "invalid input: bad row (row 2)"},
		{Newf(ErrMissingColumn, "need %s", "id"), "missing required column: need id"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{New(ErrMissingColumn, "id"), ExitInvalidData},
		{fmt.Errorf("loading corpus: %w", New(ErrInvalidInput, "x")), ExitInvalidData},
		{fmt.Errorf("sync: %w", ErrStoreUnavailable), ExitPersistence},
		{ErrSnapshotCorrupt, ExitPersistence},
		{errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
