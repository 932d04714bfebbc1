// Package ai defines the record of one AI flow run across the provider chain
package ai

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxPromptLength bounds what is sent to a provider
const MaxPromptLength = 20000

var (
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
	ErrPromptTooLong   = errors.New("prompt exceeds maximum length")
	ErrAlreadyFinished = errors.New("generation already finished")
	ErrUnknownFlow     = errors.New("flow name is required")
)

// Status represents where a generation is in its lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Outcome of a single provider attempt
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Attempt is one provider call within a generation
type Attempt struct {
	Provider string
	Outcome  Outcome
	Duration time.Duration
	Error    string
}

// Generation tracks one flow run for one user
type Generation struct {
	id          uuid.UUID
	flow        string
	userID      uuid.UUID
	prompt      string
	status      Status
	attempts    []Attempt
	provider    string
	cached      bool
	failure     string
	createdAt   time.Time
	completedAt *time.Time
}

// NewGeneration validates the prompt and starts a pending generation
func NewGeneration(flow string, userID uuid.UUID, prompt string) (*Generation, error) {
	if strings.TrimSpace(flow) == "" {
		return nil, ErrUnknownFlow
	}
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	return &Generation{
		id:        uuid.New(),
		flow:      flow,
		userID:    userID,
		prompt:    prompt,
		status:    StatusPending,
		createdAt: time.Now().UTC(),
	}, nil
}

// ValidatePrompt rejects blank and oversized prompts
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}
	return nil
}

func (g *Generation) ID() uuid.UUID { return g.id }
func (g *Generation) Flow() string { return g.flow }
func (g *Generation) UserID() uuid.UUID { return g.userID }
func (g *Generation) Prompt() string { return g.prompt }
func (g *Generation) Status() Status { return g.status }
func (g *Generation) Provider() string { return g.provider }
func (g *Generation) Cached() bool { return g.cached }
func (g *Generation) Failure() string { return g.failure }
func (g *Generation) CreatedAt() time.Time { return g.createdAt }
func (g *Generation) CompletedAt() *time.Time { return g.completedAt }

// Attempts returns a copy of the provider attempts in order
func (g *Generation) Attempts() []Attempt {
	out := make([]Attempt, len(g.attempts))
	copy(out, g.attempts)
	return out
}

// Tried lists the providers attempted, in order
func (g *Generation) Tried() []string {
	names := make([]string, 0, len(g.attempts))
	for _, a := range g.attempts {
		names = append(names, a.Provider)
	}
	return names
}

// RecordFailure notes a provider that errored or gave unusable output
func (g *Generation) RecordFailure(provider string, elapsed time.Duration, err error) error {
	if g.status != StatusPending {
		return ErrAlreadyFinished
	}
	a := Attempt{Provider: provider, Outcome: OutcomeFailed, Duration: elapsed}
	if err != nil {
		a.Error = err.Error()
	}
	g.attempts = append(g.attempts, a)
	return nil
}

// Complete marks the generation answered by provider
func (g *Generation) Complete(provider string, elapsed time.Duration) error {
	if g.status != StatusPending {
		return ErrAlreadyFinished
	}
	g.attempts = append(g.attempts, Attempt{Provider: provider, Outcome: OutcomeSucceeded, Duration: elapsed})
	g.finish(StatusCompleted)
	g.provider = provider
	return nil
}

// CompleteFromCache marks the generation answered by a stored result
func (g *Generation) CompleteFromCache(provider string) error {
	if g.status != StatusPending {
		return ErrAlreadyFinished
	}
	g.finish(StatusCompleted)
	g.provider = provider
	g.cached = true
	return nil
}

// Fail marks the generation as unanswered
func (g *Generation) Fail(reason string) error {
	if g.status != StatusPending {
		return ErrAlreadyFinished
	}
	g.finish(StatusFailed)
	g.failure = reason
	return nil
}

// Elapsed is the wall time from creation to completion, or until now
func (g *Generation) Elapsed() time.Duration {
	if g.completedAt != nil {
		return g.completedAt.Sub(g.createdAt)
	}
	return time.Since(g.createdAt)
}

func (g *Generation) finish(status Status) {
	now := time.Now().UTC()
	g.status = status
	g.completedAt = &now
}
