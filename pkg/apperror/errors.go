package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Policy (LGR) ----

func ErrBelowMinimum(min int64) *AppError {
	return New("LGR_001", fmt.Sprintf("Amount is below the pool minimum of %d", min), http.StatusUnprocessableEntity)
}

func ErrSelfTransfer() *AppError {
	return New("LGR_002", "Cannot transfer to your own account", http.StatusUnprocessableEntity)
}

func ErrSendLimitExceeded(limit int64) *AppError {
	return New("LGR_003", fmt.Sprintf("Amount exceeds your send limit of %d", limit), http.StatusUnprocessableEntity)
}

func ErrReceiveLimitExceeded(limit int64) *AppError {
	return New("LGR_004", fmt.Sprintf("Recipient cannot accept more than %d", limit), http.StatusUnprocessableEntity)
}

func ErrAccountNotFound(id int64) *AppError {
	return New("LGR_005", fmt.Sprintf("Account %d not found", id), http.StatusNotFound)
}

func ErrAccountNameNotFound(name string) *AppError {
	return New("LGR_005", fmt.Sprintf("Account %q not found", name), http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("LGR_006", "Invalid amount", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrNameTaken() *AppError {
	return New("AUTH_002", "Account name already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrWrongPassword() *AppError {
	return New("AUTH_004", "Current password is incorrect", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrLedgerCorrupt signals a failed conservation check: the pool-wide
// balance sum drifted from zero.
func ErrLedgerCorrupt(err error) *AppError {
	return Wrap("SYS_002", "Ledger integrity check failed", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("LGR_006", message, http.StatusBadRequest)
}
