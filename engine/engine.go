package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	gu "github.com/xraph/go-utils/metrics"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/weave"
	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/ext"
	mw "github.com/xraph/weave/middleware"
	"github.com/xraph/weave/observability"
	"github.com/xraph/weave/step"
	"github.com/xraph/weave/typeinfo"
)

// Engine compiles woven chains into runnable pipelines.
type Engine struct {
	logger      *slog.Logger
	extensions  *ext.Registry
	exts        []ext.Extension
	mws         []mw.Middleware
	stack       mw.Middleware
	metrics     *observability.MetricsExtension
	callTimeout time.Duration
	attempts    int
	backoff     mw.Backoff

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricFactory  gu.MetricFactory
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithExtension registers an extension with the engine.
func WithExtension(x ext.Extension) Option {
	return func(e *Engine) { e.exts = append(e.exts, x) }
}

// WithMiddleware adds middleware after the built-in stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(e *Engine) { e.mws = append(e.mws, m) }
}

// WithCallTimeout bounds every lifecycle call and handler invocation.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithRetry retries failed before and after calls up to attempts times
// in total, waiting backoff between attempts.
func WithRetry(attempts int, backoff mw.Backoff) Option {
	return func(e *Engine) {
		e.attempts = attempts
		e.backoff = backoff
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for call tracing.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for call metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) { e.meterProvider = mp }
}

// WithMetricFactory sets the factory of the built-in metrics extension.
func WithMetricFactory(f gu.MetricFactory) Option {
	return func(e *Engine) { e.metricFactory = f }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	e.extensions = ext.NewRegistry(e.logger)
	if e.metricFactory != nil {
		e.metrics = observability.NewMetricsExtensionWithFactory(e.metricFactory)
	} else {
		e.metrics = observability.NewMetricsExtension()
	}
	e.extensions.Register(e.metrics)
	for _, x := range e.exts {
		e.extensions.Register(x)
	}

	var tracingMw mw.Middleware
	if e.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(e.tracerProvider.Tracer("github.com/xraph/weave"))
	} else {
		tracingMw = mw.Tracing()
	}

	var metricsMw mw.Middleware
	if e.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(e.meterProvider.Meter("github.com/xraph/weave"))
	} else {
		metricsMw = mw.Metrics()
	}

	// recover → tracing → metrics → logging → annotate → retry → timeout → custom.
	all := []mw.Middleware{
		mw.Recover(e.logger),
		tracingMw,
		metricsMw,
		mw.Logging(e.logger),
		mw.Annotate(),
		mw.Retry(e.logger, e.attempts, e.backoff),
		mw.Timeout(e.logger, e.callTimeout),
	}
	all = append(all, e.mws...)
	e.stack = mw.Chain(all...)

	return e
}

// Extensions returns the engine's extension registry.
func (e *Engine) Extensions() *ext.Registry { return e.extensions }

// Metrics returns the built-in metrics extension.
func (e *Engine) Metrics() *observability.MetricsExtension { return e.metrics }

// Run compiles c and runs it with msg.
func (e *Engine) Run(ctx context.Context, c *chain.Handler, msg any) (*Result, error) {
	p, err := e.Compile(c)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, msg)
}

// ──────────────────────────────────────────────────
// Compile
// ──────────────────────────────────────────────────

// item is one step of the flattened run order.
type item struct {
	step  step.Step // nil for the handler
	phase mw.Phase
}

// Pipeline is a compiled chain.
type Pipeline struct {
	engine *Engine
	chain  *chain.Handler
	items  []item
}

// Compile validates the woven steps of c and returns a runnable pipeline.
// The chain's steps are snapshotted: steps woven afterwards need a new
// Compile.
func (e *Engine) Compile(c *chain.Handler) (*Pipeline, error) {
	p := &Pipeline{engine: e, chain: c}
	for _, s := range c.PreSteps().Steps() {
		p.items = append(p.items, item{step: s, phase: mw.PhaseBefore})
	}
	p.items = append(p.items, item{phase: mw.PhaseHandler})
	for _, s := range c.PostSteps().Steps() {
		p.items = append(p.items, item{step: s, phase: mw.PhaseAfter})
	}

	constructed := make(map[reflect.Type]bool)
	var check func(s step.Step) error
	check = func(s step.Step) error {
		switch s := s.(type) {
		case *step.Construct:
			if s.New == nil {
				return fmt.Errorf("%w: construct %s has no constructor", weave.ErrUnsupportedStep, s.Owner.Name)
			}
			constructed[s.Owner.Type] = true
		case *step.Invoke:
			if !s.Owner.Static && !constructed[s.Owner.Type] {
				return fmt.Errorf("%w: %s.%s", weave.ErrNotConstructed, s.Owner.Name, s.Method.Name)
			}
			// Chains without an input pass methods the zero message.
			if c.InputType() != nil && s.Method.MessageType != nil && !typeinfo.AssignableTo(c.InputType(), s.Method.MessageType) {
				return fmt.Errorf("%w: %s.%s takes %s, chain %s handles %s", weave.ErrMessageMismatch,
					s.Owner.Name, s.Method.Name, typeinfo.Name(s.Method.MessageType), c.Name(), typeinfo.Name(c.InputType()))
			}
		case *step.Protected:
			if err := check(s.Body); err != nil {
				return err
			}
			for _, cs := range s.Cleanup {
				if err := check(cs); err != nil {
					return err
				}
			}
		case *step.Continuation, *step.Comment:
		default:
			return fmt.Errorf("%w: %T", weave.ErrUnsupportedStep, s)
		}
		return nil
	}

	for _, it := range p.items {
		if it.step == nil {
			continue
		}
		if err := check(it.step); err != nil {
			return nil, fmt.Errorf("compile chain %s: %w", c.Name(), err)
		}
	}
	return p, nil
}

// Chain returns the compiled chain.
func (p *Pipeline) Chain() *chain.Handler { return p.chain }

// ──────────────────────────────────────────────────
// Run
// ──────────────────────────────────────────────────

// Result is the outcome of one run.
type Result struct {
	// Values are the handler's return values.
	Values []any

	// Stopped reports that a continuation stopped the chain before the
	// handler ran.
	Stopped bool

	// StoppedAt is the continuation that stopped the chain.
	StoppedAt step.Step

	Elapsed time.Duration
}

// Run executes the pipeline for msg.
func (p *Pipeline) Run(ctx context.Context, msg any) (*Result, error) {
	c := p.chain
	if in := c.InputType(); in != nil && (msg == nil || !reflect.TypeOf(msg).AssignableTo(in)) {
		return nil, fmt.Errorf("run chain %s: %w: got %T, want %s", c.Name(), weave.ErrMessageMismatch, msg, typeinfo.Name(in))
	}

	r := &run{
		pipeline:  p,
		msg:       msg,
		instances: make(map[reflect.Type]any),
		values:    make(map[reflect.Type]any),
	}
	if in := c.InputType(); in != nil {
		r.values[in] = msg
	}

	start := time.Now()
	err := r.exec(ctx, p.items)
	res := &Result{Values: r.out, Stopped: r.stoppedAt != nil, StoppedAt: r.stoppedAt, Elapsed: time.Since(start)}

	exts := p.engine.extensions
	log := p.engine.logger
	switch {
	case err != nil:
		log.Error("chain failed",
			slog.String("chain", c.Name()),
			slog.Duration("elapsed", res.Elapsed),
			slog.String("error", err.Error()),
		)
		exts.EmitChainFailed(ctx, c, err)
		return res, fmt.Errorf("run chain %s: %w", c.Name(), err)
	case res.Stopped:
		log.Debug("chain stopped",
			slog.String("chain", c.Name()),
			slog.String("step_id", res.StoppedAt.ID().String()),
		)
		exts.EmitChainStopped(ctx, c, res.StoppedAt)
	default:
		log.Debug("chain executed",
			slog.String("chain", c.Name()),
			slog.Duration("elapsed", res.Elapsed),
		)
		exts.EmitChainExecuted(ctx, c, res.Elapsed)
	}
	return res, nil
}

// run holds the state of one pipeline run.
type run struct {
	pipeline  *Pipeline
	msg       any
	instances map[reflect.Type]any
	values    map[reflect.Type]any
	out       []any
	stoppedAt step.Step
}

// Get implements lifecycle.Values.
func (r *run) Get(t reflect.Type) (any, bool) {
	v, ok := r.values[t]
	return v, ok
}

func (r *run) bind(types []reflect.Type, vals []any) {
	for i, t := range types {
		if i < len(vals) {
			r.values[t] = vals[i]
		}
	}
}

// exec runs items in order. Scope-bound constructions and protected
// regions take over the remainder of items so their release and cleanup
// run once it finishes, however it finishes.
func (r *run) exec(ctx context.Context, items []item) error {
	for i, it := range items {
		if r.stoppedAt != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rest := items[i+1:]
		switch s := it.step.(type) {
		case nil:
			if err := r.handle(ctx); err != nil {
				return err
			}
		case *step.Construct:
			inst, err := s.New(ctx)
			if err != nil {
				return fmt.Errorf("construct %s: %w", s.Owner.Name, err)
			}
			r.instances[s.Owner.Type] = inst
			if s.ScopeBound {
				return r.scoped(ctx, s, inst, rest)
			}
		case *step.Invoke:
			if err := r.invoke(ctx, s, it.phase); err != nil {
				return err
			}
		case *step.Protected:
			return r.protected(ctx, s, it.phase, rest)
		case *step.Continuation:
			if v, ok := r.values[s.On]; ok && s.ShouldStop(v) {
				r.stoppedAt = s
				return nil
			}
		case *step.Comment:
		default:
			return fmt.Errorf("%w: %T", weave.ErrUnsupportedStep, s)
		}
	}
	return nil
}

func (r *run) scoped(ctx context.Context, s *step.Construct, inst any, rest []item) (err error) {
	defer func() {
		c, ok := inst.(io.Closer)
		if !ok {
			return
		}
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("release %s: %w", s.Owner.Name, cerr))
		}
	}()
	return r.exec(ctx, rest)
}

func (r *run) protected(ctx context.Context, s *step.Protected, phase mw.Phase, rest []item) (err error) {
	defer func() {
		// Cleanup runs even when the region was stopped or canceled.
		stopped := r.stoppedAt
		r.stoppedAt = nil
		defer func() { r.stoppedAt = stopped }()

		cleanupCtx := context.WithoutCancel(ctx)
		for _, cs := range s.Cleanup {
			if cerr := r.exec(cleanupCtx, []item{{step: cs, phase: mw.PhaseFinally}}); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
	}()
	if err := r.exec(ctx, []item{{step: s.Body, phase: phase}}); err != nil {
		return err
	}
	return r.exec(ctx, rest)
}

func (r *run) invoke(ctx context.Context, s *step.Invoke, phase mw.Phase) error {
	inst, err := r.instance(s.Owner)
	if err != nil {
		return err
	}

	call := mw.Call{
		Chain:      r.pipeline.chain.Name(),
		StepID:     s.ID(),
		Middleware: s.Owner.Name,
		Method:     s.Method.Name,
		Phase:      phase,
	}
	var out []any
	err = r.pipeline.engine.stack(ctx, call, func(ctx context.Context) error {
		var callErr error
		out, callErr = s.Method.Call(ctx, inst, r.msg, r)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("%s: %w", call.Name(), err)
	}
	r.bind(s.Method.Produces, out)
	return nil
}

func (r *run) handle(ctx context.Context) error {
	h := r.pipeline.chain
	if h.Handle == nil {
		return nil
	}

	call := mw.Call{Chain: h.Name(), Method: "handle", Phase: mw.PhaseHandler}
	var out []any
	err := r.pipeline.engine.stack(ctx, call, func(ctx context.Context) error {
		var callErr error
		out, callErr = h.Handle(ctx, r.msg, r)
		return callErr
	})
	if err != nil {
		return err
	}
	r.out = out
	r.bind(h.Produces, out)
	return nil
}

// instance returns the receiver for a call on owner. Static middleware
// gets a zero value.
func (r *run) instance(owner step.Owner) (any, error) {
	if owner.Static {
		switch {
		case owner.Type == nil:
			return nil, nil
		case owner.Type.Kind() == reflect.Pointer:
			return reflect.New(owner.Type.Elem()).Interface(), nil
		default:
			return reflect.Zero(owner.Type).Interface(), nil
		}
	}
	inst, ok := r.instances[owner.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", weave.ErrNotConstructed, owner.Name)
	}
	return inst, nil
}
