package middleware

import (
	"context"
	"fmt"

	"github.com/nerviz/viewrouter/pkg/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "viewrouter"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "viewrouter").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// IncludeParams adds route parameters as span attributes.
	// Parameters may carry identifiers, so this is off by default.
	IncludeParams bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav *router.Navigation) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(nav *router.Navigation) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeParams enables route parameters as span attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *router.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *router.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The span replaces nav.Context for the rest of the chain, so middleware
// placed after it can start child spans from nav.Context.
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("viewrouter.path", nav.Path),
			attribute.String("viewrouter.from", nav.From),
			attribute.String("viewrouter.mode", nav.Mode.String()),
			attribute.Bool("viewrouter.matched", nav.Resolution.Matched),
		}
		if nav.Resolution.Matched {
			attrs = append(attrs,
				attribute.String("viewrouter.route", nav.Resolution.Entry.Path),
				attribute.String("viewrouter.view", string(nav.Resolution.Entry.View)),
			)
		}
		if config.IncludeParams {
			for k, v := range nav.Resolution.Params {
				attrs = append(attrs, attribute.String("viewrouter.param."+k, v))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}

		parent := nav.Context
		if parent == nil {
			parent = context.Background()
		}
		spanCtx, span := config.tracer.Start(parent, spanName(nav),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		nav.Context = spanCtx
		defer func() { nav.Context = parent }()

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromNavigation returns the span started for nav, or a no-op span.
func SpanFromNavigation(nav *router.Navigation) trace.Span {
	if nav.Context == nil {
		return trace.SpanFromContext(context.Background())
	}
	return trace.SpanFromContext(nav.Context)
}

// spanName uses the route pattern when matched to keep names low-cardinality.
func spanName(nav *router.Navigation) string {
	if nav.Resolution.Matched {
		return fmt.Sprintf("navigate %s", nav.Resolution.Entry.Path)
	}
	return "navigate unmatched"
}
