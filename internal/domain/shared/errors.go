package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code or one of the code's
// parents, so a re-messaged PART_NOT_FOUND still matches ErrNotFound.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	for code := e.Code; code != ""; code = codeParents[code] {
		if code == t.Code {
			return true
		}
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes. Each maps to exactly one failed precondition so callers can
// give staff actionable guidance.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeCustomerNotFound     = "CUSTOMER_NOT_FOUND"
	CodePartNotFound         = "PART_NOT_FOUND"
	CodePONotFound           = "PO_NOT_FOUND"
	CodeItemNotFound         = "ITEM_NOT_FOUND"
	CodeInactiveCustomer     = "INACTIVE_CUSTOMER"
	CodeInvalidQuantity      = "INVALID_QUANTITY"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeDuplicateKey         = "DUPLICATE_KEY"
	CodePOCancelled          = "PO_CANCELLED"
	CodePOPartMismatch       = "PO_PART_MISMATCH"
	CodePOInUse              = "PO_IN_USE"
	CodeOverDelivery         = "OVER_DELIVERY"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInvalidScanOutState  = "INVALID_SCAN_OUT_STATE"
	CodeGenerationExhausted  = "GENERATION_EXHAUSTED"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeStorage              = "STORAGE_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidScanCode      = "INVALID_SCAN_CODE"
	CodeInvalidStatusRequest = "INVALID_STATUS"
)

// codeParents groups specific codes under a broader kind
var codeParents = map[string]string{
	CodeCustomerNotFound:    CodeNotFound,
	CodePartNotFound:        CodeNotFound,
	CodePONotFound:          CodeNotFound,
	CodeItemNotFound:        CodeNotFound,
	CodeInvalidScanCode:     CodeItemNotFound,
	CodeInvalidScanOutState: CodeInvalidTransition,
	CodePOInUse:             CodeInvalidTransition,
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrCustomerNotFound    = NewDomainError(CodeCustomerNotFound, "Customer not found")
	ErrPartNotFound        = NewDomainError(CodePartNotFound, "Part not found")
	ErrPONotFound          = NewDomainError(CodePONotFound, "Purchase order not found")
	ErrItemNotFound        = NewDomainError(CodeItemNotFound, "Inventory item not found")
	ErrInactiveCustomer    = NewDomainError(CodeInactiveCustomer, "Customer is not active")
	ErrInvalidQuantity     = NewDomainError(CodeInvalidQuantity, "Quantity must be a positive integer")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrDuplicateKey        = NewDomainError(CodeDuplicateKey, "Resource already exists")
	ErrPOCancelled         = NewDomainError(CodePOCancelled, "Purchase order is cancelled")
	ErrPOPartMismatch      = NewDomainError(CodePOPartMismatch, "Purchase order does not belong to this part")
	ErrOverDelivery        = NewDomainError(CodeOverDelivery, "Delivery exceeds the purchase order total quantity")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Operation not allowed in current state")
	ErrInvalidScanOutState = NewDomainError(CodeInvalidScanOutState, "Item cannot be scanned out in its current state")
	ErrPOInUse             = NewDomainError(CodePOInUse, "Purchase order is referenced by inventory items")
	ErrInvalidScanCode     = NewDomainError(CodeInvalidScanCode, "Scan code is not a valid item code")
	ErrGenerationExhausted = NewDomainError(CodeGenerationExhausted, "Could not generate a unique item identifier")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)

// StorageError wraps an unexpected persistence failure. The core surfaces it
// without interpreting the cause.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage wraps err as a StorageError unless it is nil or already a
// domain error, which pass through untouched.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
