package usecase

import (
	"errors"
	"fmt"

	"oms-backend/internal/domain"
)

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrConflict string

func (e ErrConflict) Error() string { return string(e) }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }

// Validation reason codes. A ValidationError is always recoverable by the
// caller resubmitting a corrected request; nothing has been persisted.
const (
	CodeModeNotAllowed          = "MODE_NOT_ALLOWED"
	CodeDuplicateMode           = "DUPLICATE_MODE"
	CodeInvalidSplitCombination = "INVALID_SPLIT_COMBINATION"
	CodeNonPositiveAmount       = "NON_POSITIVE_AMOUNT"
	CodeAmountMismatch          = "AMOUNT_MISMATCH"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Code + ": " + e.Message }

func validationErrf(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Settlement failure codes. Wallet and gateway-create failures abort the
// whole order-creation unit of work; verify failures leave the order in a
// payment-pending state.
const (
	CodeWalletInsufficientBalance = "WALLET_INSUFFICIENT_BALANCE"
	CodeWalletDebitFailed         = "WALLET_DEBIT_FAILED"
	CodeGatewayCreateFailed       = "GATEWAY_CREATE_FAILED"
	CodeGatewayVerifyFailed       = "GATEWAY_VERIFY_FAILED"
)

var ErrInsufficientBalance = errors.New("wallet insufficient balance")

type SettlementError struct {
	Code  string
	Mode  domain.PaymentMode
	Cause error
}

func (e *SettlementError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Code, e.Mode, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Code, e.Mode)
}

func (e *SettlementError) Unwrap() error { return e.Cause }
