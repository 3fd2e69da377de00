package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Lookup reports every outcome as a Resolution without failing on
	// zero or many matches.
	Lookup(ctx context.Context, campusID snowflake.ID, grade, frequency string) (Resolution, error)
	// Resolve returns the single applicable structure.
	Resolve(ctx context.Context, campusID snowflake.ID, grade, frequency string) (FeeStructure, error)
	Get(ctx context.Context, id snowflake.ID) (FeeStructure, error)
	GetHead(ctx context.Context, id snowflake.ID) (FeeHead, error)
}
