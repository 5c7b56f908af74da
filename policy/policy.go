// Package policy weaves registered middleware into chains.
//
// A [Policy] holds the ordered list of validated middleware registrations
// and applies them to a batch of chains:
//
//	p, err := policy.New(policy.WithLogger(logger))
//	if err != nil { ... }
//	if _, err := policy.AddMiddleware[*Stopwatch](p, registration.Constructor(NewStopwatch)); err != nil { ... }
//	if err := p.Apply(ctx, registry.Chains()); err != nil { ... }
//
// For every chain, before calls are inserted ahead of the chain's own
// pre-steps in registration order and after calls are appended in
// reverse registration order. Finally calls guard the before call they
// belong to and everything that follows it. A chain that fails to weave
// is left untouched; the others are still woven.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/weave"
	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/ext"
	"github.com/xraph/weave/lifecycle"
	"github.com/xraph/weave/registration"
)

// tracerName is the instrumentation scope name for weaving spans.
const tracerName = "github.com/xraph/weave/policy"

// Policy applies middleware registrations to chains.
type Policy struct {
	mu   sync.RWMutex
	regs []*registration.Registration

	config     weave.Config
	names      lifecycle.NameSet
	rules      Rules
	logger     *slog.Logger
	tracer     trace.Tracer
	exts       []ext.Extension
	extensions *ext.Registry
}

// Option configures a Policy.
type Option func(*Policy) error

// WithConfig sets the policy configuration. The config is validated.
func WithConfig(cfg weave.Config) Option {
	return func(p *Policy) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.config = cfg
		return nil
	}
}

// WithLogger sets the logger used for weaving events.
func WithLogger(l *slog.Logger) Option {
	return func(p *Policy) error {
		p.logger = l
		return nil
	}
}

// WithTracer sets the tracer used for per-chain weaving spans. The
// default is the global tracer provider's.
func WithTracer(t trace.Tracer) Option {
	return func(p *Policy) error {
		p.tracer = t
		return nil
	}
}

// WithExtension registers an extension notified of weaving events.
func WithExtension(e ext.Extension) Option {
	return func(p *Policy) error {
		p.exts = append(p.exts, e)
		return nil
	}
}

// WithContinuation adds a continuation strategy after the configured ones.
func WithContinuation(s ContinuationStrategy) Option {
	return func(p *Policy) error {
		p.rules.Continuations = append(p.rules.Continuations, s)
		return nil
	}
}

// WithRules replaces the continuation rules.
func WithRules(r Rules) Option {
	return func(p *Policy) error {
		p.rules = r
		return nil
	}
}

// WithConcurrency sets how many chains Apply weaves in parallel.
func WithConcurrency(n int) Option {
	return func(p *Policy) error {
		if n < 1 {
			return fmt.Errorf("weave: concurrency must be at least 1, got %d", n)
		}
		p.config.Concurrency = n
		return nil
	}
}

// New creates a Policy with the given options.
func New(opts ...Option) (*Policy, error) {
	p := &Policy{
		config: weave.DefaultConfig(),
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	p.names = lifecycle.NamesFrom(p.config)
	p.extensions = ext.NewRegistry(p.logger)
	for _, e := range p.exts {
		p.extensions.Register(e)
	}
	return p, nil
}

// Config returns a copy of the policy configuration.
func (p *Policy) Config() weave.Config { return p.config }

// Extensions returns the policy's extension registry.
func (p *Policy) Extensions() *ext.Registry { return p.extensions }

// AddType validates t and appends it to the registration list.
func (p *Policy) AddType(t registration.Type, opts ...registration.Option) (*registration.Registration, error) {
	r, err := registration.New(t, p.names, opts...)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.regs = append(p.regs, r)
	p.mu.Unlock()

	p.logger.Debug("middleware registered",
		slog.String("middleware", t.Name),
		slog.String("registration_id", r.ID.String()),
		slog.Int("before", len(r.Before)),
		slog.Int("after", len(r.After)),
		slog.Int("finally", len(r.Finally)),
	)
	p.extensions.EmitMiddlewareRegistered(context.Background(), r)
	return r, nil
}

// AddMiddlewareByMessageType is AddType with message-type matching: each
// lifecycle method applies only to chains whose input type is assignable
// to the method's message type.
func (p *Policy) AddMiddlewareByMessageType(t registration.Type, opts ...registration.Option) (*registration.Registration, error) {
	return p.AddType(t, append(opts, registration.MatchByMessageType())...)
}

// AddMiddleware registers middleware type T with p.
func AddMiddleware[T any](p *Policy, opts ...registration.TypeOption) (*registration.Registration, error) {
	return p.AddType(registration.TypeOf[T](opts...))
}

// Registrations returns a snapshot of the registration list.
func (p *Policy) Registrations() registration.List {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return registration.NewList(p.regs...)
}

// Apply weaves every chain with the same registration list. Failing
// chains are left untouched and their errors are joined. Registrations
// added while Apply runs wait for it to finish. A chain listed twice is
// woven twice, one pass after the other.
func (p *Policy) Apply(ctx context.Context, chains []chain.Chain) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	regs := registration.NewList(p.regs...)

	errs := make([]error, len(chains))
	var g errgroup.Group
	g.SetLimit(max(p.config.Concurrency, 1))
	for _, batch := range batches(chains) {
		g.Go(func() error {
			for _, i := range batch {
				errs[i] = p.weaveChain(ctx, chains[i], regs)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// batches groups the indexes of chains so that a chain listed more than
// once is woven in list order by a single goroutine.
func batches(chains []chain.Chain) [][]int {
	seen := make(map[chain.Chain]int, len(chains))
	out := make([][]int, 0, len(chains))
	for i, c := range chains {
		if c != nil && reflect.TypeOf(c).Comparable() {
			if b, ok := seen[c]; ok {
				out[b] = append(out[b], i)
				continue
			}
			seen[c] = len(out)
		}
		out = append(out, []int{i})
	}
	return out
}

func (p *Policy) weaveChain(ctx context.Context, c chain.Chain, regs registration.List) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("weave chain %s: %w", c.Name(), err)
	}

	ctx, span := p.tracer.Start(ctx, "weave.chain",
		trace.WithAttributes(
			attribute.String("weave.chain", c.Name()),
			attribute.Int("weave.registrations", regs.Len()),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	start := time.Now()
	plan, err := Weave(c, regs, p.rules)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("weave failed",
			slog.String("chain", c.Name()),
			slog.String("error", err.Error()),
		)
		p.extensions.EmitWeaveFailed(ctx, c, err)
		return fmt.Errorf("weave chain %s: %w", c.Name(), err)
	}

	plan.ApplyTo(c)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("weave.plan.id", plan.ID.String()),
		attribute.Int("weave.pre_steps", len(plan.Pre)),
		attribute.Int("weave.post_steps", len(plan.Post)),
	)
	span.SetStatus(codes.Ok, "")
	p.logger.Debug("chain woven",
		slog.String("chain", c.Name()),
		slog.String("plan_id", plan.ID.String()),
		slog.Int("pre_steps", len(plan.Pre)),
		slog.Int("post_steps", len(plan.Post)),
		slog.Duration("elapsed", elapsed),
	)
	p.extensions.EmitChainWoven(ctx, c, plan.Pre, plan.Post, elapsed)
	return nil
}

// ApplyAll weaves chains with regs using a policy built from opts.
func ApplyAll(ctx context.Context, chains []chain.Chain, regs registration.List, opts ...Option) error {
	p, err := New(opts...)
	if err != nil {
		return err
	}
	p.regs = regs.All()
	return p.Apply(ctx, chains)
}
