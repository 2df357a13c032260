package transmute

import "go.opentelemetry.io/otel/trace"

// DefaultRetryBudget is the number of execution attempts a Transmute call
// makes before giving up and returning an ExecutionFailedError, matching
// the original registry's retry budget.
const DefaultRetryBudget = 10

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	observer    Observer
	retryBudget int
	tracer      trace.Tracer
}

// WithObserver attaches an Observer notified of every registry and
// Transmute lifecycle event.
func WithObserver(o Observer) RegistryOption {
	return func(c *registryConfig) { c.observer = o }
}

// WithRetryBudget overrides DefaultRetryBudget as the registry-wide cap on
// execution retry attempts.
func WithRetryBudget(n int) RegistryOption {
	return func(c *registryConfig) { c.retryBudget = n }
}

// WithTracer attaches an OpenTelemetry tracer wrapping Search and Run in
// spans. A nil tracer (the default) disables tracing.
func WithTracer(t trace.Tracer) RegistryOption {
	return func(c *registryConfig) { c.tracer = t }
}

// TransmuteOption configures a single Transmute call.
type TransmuteOption func(*transmuteConfig)

type transmuteConfig struct {
	srcCat      Category
	srcCatSet   bool
	srcTags     TagSet
	dstTags     TagSet
	explicit    bool
	retryBudget int
	retrySet    bool
}

// WithSrcCategory overrides the srcCat argument of Transmute (and so the
// category inferred from the input value's Go type when that argument is
// the zero Category), for callers whose value doesn't map 1:1 to a Category.
func WithSrcCategory(cat Category) TransmuteOption {
	return func(c *transmuteConfig) { c.srcCat = cat; c.srcCatSet = true }
}

// WithSrcTags supplies tags known to already hold of the input value in
// addition to (or, with WithExplicit, instead of) whatever the
// DetectorTable would infer.
func WithSrcTags(tags ...Tag) TransmuteOption {
	return func(c *transmuteConfig) { c.srcTags = NewTagSet(tags...) }
}

// WithDstTags requires the resolved chain's final state to carry every tag
// given, in addition to reaching the destination category.
func WithDstTags(tags ...Tag) TransmuteOption {
	return func(c *transmuteConfig) { c.dstTags = NewTagSet(tags...) }
}

// WithExplicit suppresses detector-based tag inference: only the tags
// given via WithSrcTags are used as the starting tag state.
func WithExplicit() TransmuteOption {
	return func(c *transmuteConfig) { c.explicit = true }
}

// WithCallRetryBudget overrides the registry's retry budget for this one
// call only.
func WithCallRetryBudget(n int) TransmuteOption {
	return func(c *transmuteConfig) { c.retryBudget = n; c.retrySet = true }
}
