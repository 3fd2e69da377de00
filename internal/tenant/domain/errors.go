package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not_found")
	ErrInvalidCode  = errors.New("invalid_code")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidGrade = errors.New("invalid_grade")
)

const (
	EntityOrganization = "organization"
	EntityCampus       = "campus"
	EntityStudent      = "student"
)

// NotFoundError names the missing record and the key it was looked up by.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func OrganizationNotFound(code string) error { return notFound(EntityOrganization, code) }
func CampusNotFound(code string) error       { return notFound(EntityCampus, code) }
func StudentNotFound(key string) error       { return notFound(EntityStudent, key) }
