package types

import "fmt"

// ErrorCode values are part of the ledger contract and must never be
// renumbered. AlreadyPaid and InvalidFrequency are reserved: defined for
// compatibility, returned by no transition today.
type ErrorCode uint8

const (
	CodeUnauthorized ErrorCode = iota + 1
	CodeEmployeeNotFound
	CodeInsufficientFunds
	CodeInvalidAmount
	CodeAlreadyPaid
	CodeInvalidFrequency
)

func (c ErrorCode) String() string {
	switch c {
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeEmployeeNotFound:
		return "EmployeeNotFound"
	case CodeInsufficientFunds:
		return "InsufficientFunds"
	case CodeInvalidAmount:
		return "InvalidAmount"
	case CodeAlreadyPaid:
		return "AlreadyPaid"
	case CodeInvalidFrequency:
		return "InvalidFrequency"
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// PayrollError is returned by every rejected ledger transition. A transition
// that returns one has written nothing.
type PayrollError struct {
	Code   ErrorCode `json:"code"`
	Detail string    `json:"detail,omitempty"`
}

func (e *PayrollError) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Detail
}

func NewError(code ErrorCode, detail string) *PayrollError {
	return &PayrollError{Code: code, Detail: detail}
}

const (
	ErrInvalidInput  = "Invalid input"
	ErrDatabaseError = "Database error"
	ErrChainError    = "Chain error"
	ErrInternalError = "internal server error"
)
