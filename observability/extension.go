package observability

import (
	"context"
	"time"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/weave/chain"
	"github.com/xraph/weave/ext"
	"github.com/xraph/weave/registration"
	"github.com/xraph/weave/step"
)

// Compile-time interface checks.
var (
	_ ext.Extension            = (*MetricsExtension)(nil)
	_ ext.MiddlewareRegistered = (*MetricsExtension)(nil)
	_ ext.ChainWoven           = (*MetricsExtension)(nil)
	_ ext.WeaveFailed          = (*MetricsExtension)(nil)
	_ ext.ChainExecuted        = (*MetricsExtension)(nil)
	_ ext.ChainStopped         = (*MetricsExtension)(nil)
	_ ext.ChainFailed          = (*MetricsExtension)(nil)
)

// MetricsExtension records weaving and execution counters via go-utils
// MetricFactory.
type MetricsExtension struct {
	MiddlewareRegistered gu.Counter
	ChainsWoven          gu.Counter
	WeaveFailures        gu.Counter
	StepsInserted        gu.Counter
	ChainsExecuted       gu.Counter
	ChainsStopped        gu.Counter
	ChainsFailed         gu.Counter
}

// NewMetricsExtension creates a MetricsExtension using a default metrics collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("weave/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		MiddlewareRegistered: factory.Counter("weave.middleware.registered"),
		ChainsWoven:          factory.Counter("weave.chain.woven"),
		WeaveFailures:        factory.Counter("weave.chain.weave_failed"),
		StepsInserted:        factory.Counter("weave.steps.inserted"),
		ChainsExecuted:       factory.Counter("weave.chain.executed"),
		ChainsStopped:        factory.Counter("weave.chain.stopped"),
		ChainsFailed:         factory.Counter("weave.chain.failed"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Weaving hooks ───────────────────────────────────

// OnMiddlewareRegistered implements ext.MiddlewareRegistered.
func (m *MetricsExtension) OnMiddlewareRegistered(_ context.Context, _ *registration.Registration) error {
	m.MiddlewareRegistered.Inc()
	return nil
}

// OnChainWoven implements ext.ChainWoven. StepsInserted counts top-level
// steps; nested cleanup steps are not counted.
func (m *MetricsExtension) OnChainWoven(_ context.Context, _ chain.Chain, pre, post []step.Step, _ time.Duration) error {
	m.ChainsWoven.Inc()
	for range len(pre) + len(post) {
		m.StepsInserted.Inc()
	}
	return nil
}

// OnWeaveFailed implements ext.WeaveFailed.
func (m *MetricsExtension) OnWeaveFailed(_ context.Context, _ chain.Chain, _ error) error {
	m.WeaveFailures.Inc()
	return nil
}

// ── Execution hooks ─────────────────────────────────

// OnChainExecuted implements ext.ChainExecuted.
func (m *MetricsExtension) OnChainExecuted(_ context.Context, _ chain.Chain, _ time.Duration) error {
	m.ChainsExecuted.Inc()
	return nil
}

// OnChainStopped implements ext.ChainStopped.
func (m *MetricsExtension) OnChainStopped(_ context.Context, _ chain.Chain, _ step.Step) error {
	m.ChainsStopped.Inc()
	return nil
}

// OnChainFailed implements ext.ChainFailed.
func (m *MetricsExtension) OnChainFailed(_ context.Context, _ chain.Chain, _ error) error {
	m.ChainsFailed.Inc()
	return nil
}
