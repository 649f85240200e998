// Package session holds the per-session conversation transcripts.
package session

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// Store owns transcript memory. Lookups against an unknown id fail with
// ErrSessionNotFound rather than returning an empty transcript.
type Store interface {
	Create(ctx context.Context) (string, error)
	Transcript(ctx context.Context, id string) (string, error)
	Append(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
}
