// Package ai provides the application layer for the AI completion flows
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	aidomain "github.com/ayurwell/portal/internal/domain/ai"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	aiinfra "github.com/ayurwell/portal/internal/infrastructure/ai"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Flow names, used in cache keys, logs and metrics
const (
	FlowDietPlan         = "generateInitialDietPlan"
	FlowMealAlternatives = "suggestAlternativeMeals"
)

const (
	dietPlanFailure         = "An unexpected error occurred while generating the plan."
	mealAlternativesFailure = "Could not suggest alternative meals right now."
)

const instrumentationName = "github.com/ayurwell/portal/internal/application/ai"

var (
	// ErrNoJSON is returned when a provider's answer holds no JSON object
	ErrNoJSON = errors.New("response contains no JSON object")
	// ErrInvalidOutput is returned when the JSON does not match the flow's schema
	ErrInvalidOutput = errors.New("response does not match the output schema")
	// ErrNoProviders is returned when the chain is empty
	ErrNoProviders = errors.New("no AI provider configured")
)

// Options configures the provider chain
type Options struct {
	Primary           string
	Timeout           time.Duration
	EnableCache       bool
	CacheTTL          time.Duration
	RequestsPerMinute int
	Burst             int
}

// Service runs the completion flows over an ordered chain of providers
type Service struct {
	providers []outbound.AIProvider
	cache     outbound.CacheRepository
	keys      *cache.KeyBuilder
	validator *security.Validator
	limiter   *RateLimiter
	opts      Options
	logger    *zap.Logger

	mu      sync.RWMutex
	primary string

	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

var _ inbound.AIService = (*Service)(nil)

// NewService creates the AI service. cacheRepo may be nil.
func NewService(
	providers []outbound.AIProvider,
	cacheRepo outbound.CacheRepository,
	validator *security.Validator,
	opts Options,
	logger *zap.Logger,
) (*Service, error) {
	meter := otel.Meter(instrumentationName)

	// Underscored names: the Prometheus exporter keeps dots under UTF-8 validation.

	duration, err := meter.Float64Histogram(
		"ayurwell_ai_generation_duration",
		metric.WithDescription("Time spent on one provider attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	requests, err := meter.Int64Counter(
		"ayurwell_ai_generation_requests",
		metric.WithDescription("AI flow attempts by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	s := &Service{
		providers: providers,
		cache:     cacheRepo,
		keys:      cache.NewKeyBuilder(),
		validator: validator,
		limiter:   NewRateLimiter(opts.RequestsPerMinute, opts.Burst),
		opts:      opts,
		logger:    logger.Named("ai-service"),
		primary:   opts.Primary,
		tracer:    otel.Tracer(instrumentationName),
		duration:  duration,
		requests:  requests,
	}

	s.logger.Info("AI service initialized",
		zap.String("primary_provider", opts.Primary),
		zap.Strings("chain", s.chainNames()),
		zap.Bool("cache", opts.EnableCache && cacheRepo != nil),
	)

	return s, nil
}

// GenerateInitialDietPlan drafts a plan from a patient profile and constraints.
// The second result names the provider that answered.
func (s *Service) GenerateInitialDietPlan(ctx context.Context, actor inbound.Actor, in inbound.DietPlanInput) (*inbound.DietPlanOutput, string, error) {
	return run(ctx, s, actor, flow[inbound.DietPlanOutput]{
		name:    FlowDietPlan,
		failure: dietPlanFailure,
		input:   in,
		prompt:  buildDietPlanPrompt(in),
		check: func(out *inbound.DietPlanOutput) error {
			return dietplan.ValidateDays(out.DietPlan.Plan)
		},
	})
}

// SuggestAlternativeMeals proposes meals built from the ingredients at hand
func (s *Service) SuggestAlternativeMeals(ctx context.Context, actor inbound.Actor, in inbound.MealAlternativesInput) (*inbound.MealAlternativesOutput, string, error) {
	return run(ctx, s, actor, flow[inbound.MealAlternativesOutput]{
		name:    FlowMealAlternatives,
		failure: mealAlternativesFailure,
		input:   in,
		prompt:  buildMealAlternativesPrompt(in),
	})
}

// Providers probes every provider in chain order
func (s *Service) Providers(ctx context.Context) []inbound.ProviderStatus {
	primary := s.Primary()
	results := aiinfra.CheckProviders(ctx, s.chain())

	statuses := make([]inbound.ProviderStatus, 0, len(results))
	for _, r := range results {
		statuses = append(statuses, inbound.ProviderStatus{
			Name:      r.Name,
			Healthy:   r.Healthy,
			Primary:   r.Name == primary,
			Error:     r.Error,
			LatencyMs: r.Latency.Milliseconds(),
		})
	}
	return statuses
}

// Primary returns the name of the provider tried first
func (s *Service) Primary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary
}

// SetPrimary switches the provider tried first
func (s *Service) SetPrimary(name string) {
	s.mu.Lock()
	previous := s.primary
	s.primary = name
	s.mu.Unlock()

	if previous != name {
		s.logger.Info("AI primary provider changed",
			zap.String("from", previous),
			zap.String("to", name),
		)
	}
}

// chain orders the providers: primary first, then the rest as given, then mock
func (s *Service) chain() []outbound.AIProvider {
	primary := s.Primary()

	ordered := make([]outbound.AIProvider, 0, len(s.providers))
	var rest, fallback []outbound.AIProvider
	for _, p := range s.providers {
		switch {
		case p.Name() == primary:
			ordered = append(ordered, p)
		case p.Name() == "mock":
			fallback = append(fallback, p)
		default:
			rest = append(rest, p)
		}
	}

	ordered = append(ordered, rest...)
	return append(ordered, fallback...)
}

func (s *Service) chainNames() []string {
	chain := s.chain()
	names := make([]string, 0, len(chain))
	for _, p := range chain {
		names = append(names, p.Name())
	}
	return names
}

type flow[T any] struct {
	name    string
	failure string
	input   interface{}
	prompt  string
	check   func(*T) error
}

type cachedResult struct {
	Provider string          `json:"provider"`
	Output   json.RawMessage `json:"output"`
}

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeCached    = "cached"
	outcomeLimited   = "rate_limited"
)

func run[T any](ctx context.Context, s *Service, actor inbound.Actor, f flow[T]) (*T, string, error) {
	ctx, span := s.tracer.Start(ctx, "ai."+f.name, trace.WithAttributes(attribute.String("ai.flow", f.name)))
	defer span.End()

	if err := s.validator.Validate(f.input); err != nil {
		return nil, "", err
	}

	gen, err := aidomain.NewGeneration(f.name, actor.UserID, f.prompt)
	if err != nil {
		return nil, "", apperrors.NewValidationError(err.Error())
	}

	key := ""
	if s.cacheEnabled() {
		input, err := json.Marshal(f.input)
		if err == nil {
			key = s.keys.BuildAIKey(f.name, input)
			if out, provider, ok := lookup[T](ctx, s, key); ok {
				_ = gen.CompleteFromCache(provider)
				s.record(ctx, f.name, provider, outcomeCached, 0)
				span.SetAttributes(attribute.String("ai.provider", provider), attribute.Bool("ai.cached", true))
				return out, provider, nil
			}
		}
	}

	// Cache hits are free; only provider calls spend a token.
	if !s.limiter.Allow(actor.UserID) {
		s.record(ctx, f.name, "", outcomeLimited, 0)
		s.logger.Warn("AI rate limit exceeded",
			zap.String("flow", f.name),
			zap.String("user_id", actor.UserID.String()),
		)
		return nil, "", apperrors.NewTooManyRequestsError("Too many AI requests. Please wait a moment and try again.")
	}

	// ai.timeout bounds the whole flow. Each attempt gets an even share of
	// what is left so a hanging provider cannot starve the fallbacks.
	flowCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		flowCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	chain := s.chain()
	lastErr := ErrNoProviders
	for i, p := range chain {
		if err := flowCtx.Err(); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		out, err := attempt(flowCtx, p, f, s.validator, attemptBudget(flowCtx, len(chain)-i))
		elapsed := time.Since(start)

		if err != nil {
			lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			_ = gen.RecordFailure(p.Name(), elapsed, err)
			s.record(ctx, f.name, p.Name(), outcomeFailed, elapsed)
			s.logger.Warn("AI provider failed, trying next",
				zap.String("flow", f.name),
				zap.String("provider", p.Name()),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			continue
		}

		_ = gen.Complete(p.Name(), elapsed)
		s.record(ctx, f.name, p.Name(), outcomeSucceeded, elapsed)
		span.SetAttributes(attribute.String("ai.provider", p.Name()))
		s.logger.Info("AI flow completed",
			zap.String("flow", f.name),
			zap.String("generation_id", gen.ID().String()),
			zap.String("provider", p.Name()),
			zap.Strings("tried", gen.Tried()),
			zap.Duration("elapsed", gen.Elapsed()),
		)

		if key != "" {
			store(ctx, s, key, p.Name(), out)
		}
		return out, p.Name(), nil
	}

	_ = gen.Fail(lastErr.Error())
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "all providers failed")
	s.logger.Error("Every AI provider failed",
		zap.String("flow", f.name),
		zap.String("generation_id", gen.ID().String()),
		zap.Strings("tried", gen.Tried()),
		zap.Error(lastErr),
	)

	return nil, "", apperrors.NewAIUnavailableError(f.failure, lastErr)
}

// attemptBudget splits the time left on ctx evenly across the providers
// still to try. Zero means no deadline.
func attemptBudget(ctx context.Context, remaining int) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok || remaining < 1 {
		return 0
	}
	left := time.Until(deadline)
	if left <= 0 {
		return time.Nanosecond
	}
	return left / time.Duration(remaining)
}

func attempt[T any](ctx context.Context, p outbound.AIProvider, f flow[T], validator *security.Validator, budget time.Duration) (*T, error) {
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	text, err := p.Generate(ctx, f.prompt)
	if err != nil {
		return nil, err
	}
	return decode(text, validator, f.check)
}

// decode extracts, parses and validates a provider's answer
func decode[T any](text string, validator *security.Validator, check func(*T) error) (*T, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := validator.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if check != nil {
		if err := check(&out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return &out, nil
}

// extractJSON returns the outermost {...} of text. Models like to wrap JSON
// in prose or markdown fences.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func (s *Service) cacheEnabled() bool {
	return s.opts.EnableCache && s.cache != nil && s.opts.CacheTTL > 0
}

func lookup[T any](ctx context.Context, s *Service, key string) (*T, string, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("AI cache read failed", zap.Error(err))
		}
		return nil, "", false
	}

	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, "", false
	}
	var out T
	if err := json.Unmarshal(entry.Output, &out); err != nil {
		return nil, "", false
	}
	return &out, entry.Provider, true
}

func store[T any](ctx context.Context, s *Service, key, provider string, out *T) {
	output, err := json.Marshal(out)
	if err != nil {
		return
	}
	data, err := json.Marshal(cachedResult{Provider: provider, Output: output})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("AI cache write failed", zap.Error(err))
	}
}

func (s *Service) record(ctx context.Context, flowName, provider, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("flow", flowName),
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	s.requests.Add(ctx, 1, attrs)
	if elapsed > 0 {
		s.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
