package xpost

import (
	"fmt"
	"strings"
)

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError captures provider-specific validation issues.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

// RecordError reports a Bluesky post whose record could not be decoded.
type RecordError struct {
	URI    string
	Reason string
}

func (e RecordError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("malformed bluesky record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed bluesky record %s: %s", e.URI, e.Reason)
}
