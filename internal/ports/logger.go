package ports

import "github.com/bft-labs/streamship/pkg/log"

// Logger is the structured logger every component receives at construction.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for internal packages.
var (
	String   = log.String
	Int      = log.Int
	Bool     = log.Bool
	Duration = log.Duration
	Bytes    = log.Bytes
	Err      = log.Err
)
