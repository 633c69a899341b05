// Package provider provides factory functions for assembling the inference
// provider set from configuration.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/klartext/klartext/internal/adapters/driven/provider/ollama"
	"github.com/klartext/klartext/internal/adapters/driven/provider/openai"
	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/logger"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// Settings selects and configures the providers behind both inference paths.
type Settings struct {
	// Local configures the local path (Ollama).
	Local ollama.Config

	// Remote configures the remote path (OpenAI-compatible API).
	// An empty API key leaves the remote path served by the local provider.
	Remote openai.Config
}

// Set resolves inference paths to concrete providers.
type Set struct {
	local  driven.Provider
	remote driven.Provider
}

// Ensure Set implements the interface.
var _ driven.ProviderSet = (*Set)(nil)

// NewSet builds the provider set from settings. When the remote provider is
// not configured, the remote path degrades to the local provider and a
// warning is returned; escalation then tightens the prompt tier only.
func NewSet(settings Settings, prompts driven.PromptStore) (*Set, []string, error) {
	local := ollama.New(settings.Local)
	local.SetPromptStore(prompts)

	set := &Set{local: local, remote: local}
	var warnings []string

	if settings.Remote.APIKey == "" {
		warnings = append(warnings, "remote_provider_not_configured")
		logger.Warn("Remote provider not configured, remote path served by %s", local.Name())
		return set, warnings, nil
	}

	remote, err := openai.New(settings.Remote)
	if err != nil {
		return nil, nil, fmt.Errorf("create remote provider: %w", err)
	}
	remote.SetPromptStore(prompts)
	set.remote = remote
	return set, warnings, nil
}

// For returns the provider serving the given path.
func (s *Set) For(path domain.InferencePath) driven.Provider {
	if path == domain.PathRemote {
		return s.remote
	}
	return s.local
}

// Close releases all providers.
func (s *Set) Close() error {
	err := s.local.Close()
	if s.remote != s.local {
		if cerr := s.remote.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Validate pings each distinct provider and returns guidance-style errors
// for unreachable backends. Callers decide whether unreachability is fatal.
func (s *Set) Validate(ctx context.Context) []error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var errs []error
	if err := s.local.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("local provider %s unreachable: %w", s.local.Name(), err))
	}
	if s.remote != s.local {
		if err := s.remote.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("remote provider %s unreachable: %w", s.remote.Name(), err))
		}
	}
	return errs
}
