// Package ai wraps the text-generation backends behind a fail-soft service:
// every call yields an Outcome, never a panic or an unhandled error.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/aidaily/internal/ratelimit"
)

// Placeholder is returned for every call when no credential is configured.
const Placeholder = "这是模拟的AI生成内容。请设置ZHIPU_API_KEY获取真实AI处理结果。"

var ErrEmptyResponse = errors.New("empty response")

// Generator is a concrete backend.
type Generator interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// GenerationError describes a failed call. Status is the HTTP status when the
// backend answered, 0 for transport failures and timeouts.
type GenerationError struct {
	Provider string
	Status   int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s generation failed with status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Outcome is the tagged result of one Generate call.
type Outcome struct {
	Text    string
	Err     error
	Offline bool
}

func (o Outcome) OK() bool { return o.Err == nil }

// Service serialises generation calls: fixed pacing between calls, a per-call
// timeout and an optional per-run budget (both held by the pacer).
type Service struct {
	gen     Generator
	pacer   *ratelimit.Pacer
	timeout time.Duration
	log     *slog.Logger
}

// NewService returns a service backed by gen. A nil gen puts it in offline mode.
func NewService(gen Generator, pacer *ratelimit.Pacer, timeout time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{gen: gen, pacer: pacer, timeout: timeout, log: log}
}

// Offline reports whether calls short-circuit to Placeholder.
func (s *Service) Offline() bool { return s.gen == nil }

// Generate runs one prompt. Failures come back in Outcome.Err as a
// *GenerationError and are logged here; callers only decide on fallbacks.
func (s *Service) Generate(ctx context.Context, prompt string, maxTokens int) (out Outcome) {
	if s.gen == nil {
		return Outcome{Text: Placeholder, Offline: true}
	}
	provider := s.gen.Name()

	defer func() {
		if r := recover(); r != nil {
			out = s.fail(&GenerationError{Provider: provider, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if s.pacer != nil {
		if err := s.pacer.Wait(ctx); err != nil {
			return s.fail(&GenerationError{Provider: provider, Err: err})
		}
		defer s.pacer.Done()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Complete(callCtx, prompt, maxTokens)
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = &GenerationError{Provider: provider, Err: err}
		}
		return s.fail(genErr)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return s.fail(&GenerationError{Provider: provider, Err: ErrEmptyResponse})
	}

	s.log.Debug("generation ok", "provider", provider, "max_tokens", maxTokens, "chars", len([]rune(text)), "took", time.Since(start))
	return Outcome{Text: text}
}

func (s *Service) fail(err *GenerationError) Outcome {
	s.log.Warn("generation failed", "provider", err.Provider, "status", err.Status, "error", err.Err)
	return Outcome{Err: err}
}
