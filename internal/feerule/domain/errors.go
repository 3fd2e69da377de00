package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound         = errors.New("fee_structure_not_found")
	ErrNoApplicableRule = errors.New("no_applicable_rule")
	ErrAmbiguousRule    = errors.New("ambiguous_rule")
	ErrInvalidCampus    = errors.New("invalid_campus")
	ErrInvalidGrade     = errors.New("invalid_grade")
	ErrInvalidFrequency = errors.New("invalid_frequency")
)

type NoApplicableRuleError struct {
	CampusID  snowflake.ID
	Grade     string
	Frequency Frequency
}

func (e *NoApplicableRuleError) Error() string {
	return fmt.Sprintf("no fee structure for campus %s, grade %q, frequency %s", e.CampusID, e.Grade, e.Frequency)
}

func (e *NoApplicableRuleError) Is(target error) bool { return target == ErrNoApplicableRule }

// AmbiguousRuleError is returned instead of picking one of several matches.
type AmbiguousRuleError struct {
	CampusID     snowflake.ID
	Grade        string
	Frequency    Frequency
	CandidateIDs []string
}

func (e *AmbiguousRuleError) Error() string {
	return fmt.Sprintf("%d fee structures match campus %s, grade %q, frequency %s: %s",
		len(e.CandidateIDs), e.CampusID, e.Grade, e.Frequency, strings.Join(e.CandidateIDs, ","))
}

func (e *AmbiguousRuleError) Is(target error) bool { return target == ErrAmbiguousRule }
