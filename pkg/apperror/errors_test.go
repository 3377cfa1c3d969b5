package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LGR_002", "Cannot transfer to your own account", http.StatusUnprocessableEntity),
			expected: "[LGR_002] Cannot transfer to your own account",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("LGR_006", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"BelowMinimum", ErrBelowMinimum(10), "LGR_001", 422},
		{"SelfTransfer", ErrSelfTransfer(), "LGR_002", 422},
		{"SendLimitExceeded", ErrSendLimitExceeded(0), "LGR_003", 422},
		{"ReceiveLimitExceeded", ErrReceiveLimitExceeded(2500), "LGR_004", 422},
		{"AccountNotFound", ErrAccountNotFound(42), "LGR_005", 404},
		{"InvalidAmount", ErrInvalidAmount(), "LGR_006", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestLedgerErrors_CarryBound(t *testing.T) {
	assert.Contains(t, ErrBelowMinimum(25).Message, "25")
	assert.Contains(t, ErrSendLimitExceeded(-7500).Message, "-7500")
	assert.Contains(t, ErrReceiveLimitExceeded(6135).Message, "6135")
	assert.Contains(t, ErrAccountNotFound(1700000000).Message, "1700000000")
}

func TestAuthErrors(t *testing.T) {
	assert.Equal(t, "AUTH_001", ErrInvalidCredentials().Code)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials().HTTPStatus)
	assert.Equal(t, "AUTH_002", ErrNameTaken().Code)
	assert.Equal(t, "AUTH_003", ErrInvalidToken().Code)
	assert.Equal(t, "AUTH_004", ErrWrongPassword().Code)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("disk on fire")
	assert.Equal(t, "SYS_001", InternalError(inner).Code)
	assert.True(t, errors.Is(InternalError(inner), inner))
	assert.Equal(t, "SYS_002", ErrLedgerCorrupt(inner).Code)
}
