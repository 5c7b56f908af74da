package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xraph/weave"
	"github.com/xraph/weave/id"
	"github.com/xraph/weave/middleware"
)

func newTestCall() middleware.Call {
	return middleware.Call{
		Chain:      "place-order",
		StepID:     id.NewStepID(),
		Middleware: "github.com/acme/orders.Stopwatch",
		Method:     "Before",
		Phase:      middleware.PhaseBefore,
	}
}

func TestChain_ExecutionOrder(t *testing.T) {
	var order []string

	mw1 := func(ctx context.Context, _ middleware.Call, next middleware.Handler) error {
		order = append(order, "mw1-before")
		err := next(ctx)
		order = append(order, "mw1-after")
		return err
	}

	mw2 := func(ctx context.Context, _ middleware.Call, next middleware.Handler) error {
		order = append(order, "mw2-before")
		err := next(ctx)
		order = append(order, "mw2-after")
		return err
	}

	chain := middleware.Chain(mw1, mw2)
	handler := func(_ context.Context) error {
		order = append(order, "handler")
		return nil
	}

	err := chain(context.Background(), newTestCall(), handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	chain := middleware.Chain()
	called := false
	handler := func(_ context.Context) error {
		called = true
		return nil
	}

	err := chain(context.Background(), newTestCall(), handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called with empty chain")
	}
}

func TestChain_PropagatesError(t *testing.T) {
	mw := func(ctx context.Context, _ middleware.Call, next middleware.Handler) error {
		return next(ctx)
	}
	chain := middleware.Chain(mw)
	want := errors.New("handler error")

	err := chain(context.Background(), newTestCall(), func(_ context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestCall_Name(t *testing.T) {
	if got := newTestCall().Name(); got != "github.com/acme/orders.Stopwatch.Before" {
		t.Errorf("Name() = %q", got)
	}
	handler := middleware.Call{Chain: "place-order", Method: "handle", Phase: middleware.PhaseHandler}
	if got := handler.Name(); got != "handle" {
		t.Errorf("Name() = %q, want handle", got)
	}
}

func TestRecover_CatchesPanic(t *testing.T) {
	rec := middleware.Recover(slog.Default())
	c := middleware.Call{Chain: "place-order", Middleware: "Panicky", Method: "Finally", Phase: middleware.PhaseFinally}

	err := rec(context.Background(), c, func(_ context.Context) error {
		panic("test panic")
	})
	if !errors.Is(err, weave.ErrCallPanicked) {
		t.Fatalf("expected ErrCallPanicked, got %v", err)
	}
	if got := err.Error(); got != "weave: call panicked: Panicky.Finally in finally: test panic" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestRecover_PassesThrough(t *testing.T) {
	rec := middleware.Recover(slog.Default())
	want := errors.New("plain failure")

	err := rec(context.Background(), newTestCall(), func(_ context.Context) error {
		return want
	})
	if !errors.Is(err, want) || errors.Is(err, weave.ErrCallPanicked) {
		t.Fatalf("expected the call's own error, got %v", err)
	}
}

func TestLogging_LevelByPhase(t *testing.T) {
	tests := []struct {
		name  string
		call  middleware.Call
		err   error
		level string
	}{
		{"before ok", newTestCall(), nil, "level=DEBUG msg=\"call completed\""},
		{"before failed", newTestCall(), errors.New("fail"), "level=ERROR msg=\"call failed\""},
		{"finally failed", middleware.Call{Chain: "place-order", Middleware: "Session", Method: "Finally", Phase: middleware.PhaseFinally}, errors.New("fail"), "level=WARN msg=\"cleanup call failed\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			err := middleware.Logging(logger)(context.Background(), tt.call, func(_ context.Context) error {
				return tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			out := buf.String()
			if !strings.Contains(out, tt.level) {
				t.Errorf("expected %q in log output:\n%s", tt.level, out)
			}
			if !strings.Contains(out, "phase="+string(tt.call.Phase)) {
				t.Errorf("expected phase in log output:\n%s", out)
			}
		})
	}
}

func TestLogging_HandlerHasNoStepID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := middleware.Call{Chain: "place-order", Method: "handle", Phase: middleware.PhaseHandler}

	_ = middleware.Logging(logger)(context.Background(), handler, func(_ context.Context) error { return nil })
	if strings.Contains(buf.String(), "step_id=") {
		t.Errorf("handler call logged a step id:\n%s", buf.String())
	}

	buf.Reset()
	c := newTestCall()
	_ = middleware.Logging(logger)(context.Background(), c, func(_ context.Context) error { return nil })
	if !strings.Contains(buf.String(), "step_id="+c.StepID.String()) {
		t.Errorf("middleware call missing step id:\n%s", buf.String())
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	mw := middleware.Timeout(slog.Default(), time.Minute)

	err := mw(context.Background(), newTestCall(), func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTimeout_Expires(t *testing.T) {
	mw := middleware.Timeout(slog.Default(), 10*time.Millisecond)

	err := mw(context.Background(), newTestCall(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestTimeout_ZeroDisabled(t *testing.T) {
	mw := middleware.Timeout(slog.Default(), 0)

	err := mw(context.Background(), newTestCall(), func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnnotate_StoresCall(t *testing.T) {
	mw := middleware.Annotate()
	want := newTestCall()

	err := mw(context.Background(), want, func(ctx context.Context) error {
		got, ok := middleware.CallFromContext(ctx)
		if !ok {
			t.Fatal("expected call in context")
		}
		if got != want {
			t.Errorf("call = %+v, want %+v", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCallFromContext_Empty(t *testing.T) {
	if _, ok := middleware.CallFromContext(context.Background()); ok {
		t.Fatal("expected no call in a bare context")
	}
}
