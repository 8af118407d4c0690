// Package core wires the pipeline: collect staged changes, build the prompt,
// call the model, validate the response, and optionally commit.
package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/0vg/GoodGit/internal/commit"
	"github.com/0vg/GoodGit/internal/config"
	"github.com/0vg/GoodGit/internal/git"
	"github.com/0vg/GoodGit/internal/llm"
	"github.com/0vg/GoodGit/internal/prompt"
)

// GitBackend is the narrow view of the repository the pipeline needs.
type GitBackend interface {
	StagedChanges() (*git.StagedChanges, error)
	Commit(message string) error
	Push() error
}

// ExecBackend runs the real git binary.
type ExecBackend struct{}

func (ExecBackend) StagedChanges() (*git.StagedChanges, error) { return git.ReadStagedChanges() }
func (ExecBackend) Commit(message string) error                { return git.Commit(message) }
func (ExecBackend) Push() error                                { return git.Push() }

type Core struct {
	backend  GitBackend
	provider llm.Provider
	cfg      config.Config
}

// NewCore builds the pipeline. The provider is wrapped with the configured
// retry policy here so callers cannot accidentally skip it.
func NewCore(backend GitBackend, provider llm.Provider, cfg config.Config) *Core {
	if backend == nil {
		panic("git backend cannot be nil")
	}
	if provider == nil {
		panic("llm provider cannot be nil")
	}
	return &Core{
		backend:  backend,
		provider: llm.WithRetry(provider, llm.RetryPolicy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay}),
		cfg:      cfg,
	}
}

// Generate runs the read-only half of the pipeline and returns the validated
// message. Nothing touches the network until the staged changes have been
// collected and found non-empty. The optional subject biases the prompt.
func (c *Core) Generate(ctx context.Context, subject string) (*commit.Message, error) {
	changes, err := c.backend.StagedChanges()
	if err != nil {
		return nil, err
	}

	payload, err := prompt.Build(changes, c.cfg, subject)
	if err != nil {
		return nil, err
	}

	if config.IsDebug() {
		log.Debug().Int("files", len(changes.Files)).Int("prompt_bytes", len(payload.User)).Msg("Built prompt")
	}

	raw, err := c.provider.Generate(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("llm provider failed: %w", err)
	}

	msg, err := commit.Parse(raw, c.cfg.MaxDescription)
	if err != nil {
		// Not retried against the model: a regeneration is the user's call.
		return nil, err
	}
	return msg, nil
}

// GenerateAndCommit generates a message and immediately commits it.
func (c *Core) GenerateAndCommit(ctx context.Context, subject string) (*commit.Message, error) {
	msg, err := c.Generate(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := c.Commit(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Commit records the validated message. Only the canonical serialization
// ever reaches the repository.
func (c *Core) Commit(msg *commit.Message) error {
	if msg == nil {
		return fmt.Errorf("nil commit message")
	}
	return c.backend.Commit(msg.String())
}

// Push pushes the current branch after a successful commit.
func (c *Core) Push() error {
	return c.backend.Push()
}
