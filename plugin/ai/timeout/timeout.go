// Package timeout defines centralized timeout constants for conversation turns.
package timeout

import "time"

const (
	// TurnTimeout bounds one arbitration turn, extraction and calendar read included.
	TurnTimeout = 90 * time.Second

	// ExtractionTimeout is the HTTP timeout of a single LLM extraction call.
	ExtractionTimeout = 30 * time.Second

	// ExtractionRetries is the number of attempts per extraction.
	ExtractionRetries = 3

	// ShutdownTimeout is how long the server waits for in-flight turns on shutdown.
	ShutdownTimeout = 10 * time.Second
)
