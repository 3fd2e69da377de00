package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("challan_not_found")
	ErrPersistence             = errors.New("persistence_failure")
	ErrInvalidCycleKey         = errors.New("invalid_cycle_key")
	ErrInvalidAdmissionNo      = errors.New("invalid_admission_no")
	ErrInvalidPaymentMethod    = errors.New("invalid_payment_method")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidStudent          = errors.New("invalid_student")
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrStructureCampusMismatch = errors.New("structure_campus_mismatch")
	ErrChallanNoConflict       = errors.New("challan_no_conflict")
	ErrInvalidStatus           = errors.New("invalid_status")
)

type NotFoundError struct {
	ChallanNo string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("challan not found: %s", e.ChallanNo)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a storage fault. Issuance may be retried safely.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("challan %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
