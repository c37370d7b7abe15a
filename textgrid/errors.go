package textgrid

import "fmt"

// MissingTierError is returned when a required tier is absent from a set.
type MissingTierError struct {
	Tier string
}

func (e *MissingTierError) Error() string {
	return fmt.Sprintf("no '%s' tier found", e.Tier)
}

// MalformedTierError reports an interval ordering violation.
type MalformedTierError struct {
	Tier   string
	Index  int
	Reason string
}

func (e *MalformedTierError) Error() string {
	return fmt.Sprintf("tier '%s' entry %d: %s", e.Tier, e.Index, e.Reason)
}

// ParseError is returned by the reader when a file is not a valid TextGrid.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse textgrid %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parse textgrid: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
