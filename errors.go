package modelsearch

import "fmt"

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned or panicked.
var (
	ErrNoTowerRecord = Error{"No tower count has been recorded"}
	ErrNegativeTrial = Error{"Trial id must be >= 1"}
)

// MissingKeyError documents a weight feature name that is absent from the mapping it was
// configured to be found in. Weight routing is a configuration contract, not a fallback search,
// so this is never recovered from.
type MissingKeyError struct {
	Key string
	In  string // "features" or "labels"
}

func (err MissingKeyError) Error() string {
	return fmt.Sprintf("key %q is not present in %s", err.Key, err.In)
}

// UnsupportedConfigError documents a configuration tag that the library does not recognize.
// Unknown tags are fatal; they are never silently defaulted.
type UnsupportedConfigError struct {
	Field string
	Value string
}

func (err UnsupportedConfigError) Error() string {
	return fmt.Sprintf("unsupported %s: %q", err.Field, err.Value)
}

// InvariantError documents a violated internal invariant, usually indicating corruption of the
// persisted trial registry by an upstream writer.
type InvariantError struct{ Msg string }

func (err InvariantError) Error() string {
	return "invariant violation: " + err.Msg
}
