package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/nerviz/viewrouter/pkg/router"
)

// Logging creates middleware that logs each navigation with logger.
// Successful navigations log at Info, unmatched ones at Warn, failures at
// Error. A nil logger uses slog.Default.
func Logging(logger *slog.Logger) router.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "navigation")

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		start := time.Now()
		err := next()

		attrs := []any{
			"path", nav.Path,
			"from", nav.From,
			"mode", nav.Mode.String(),
			"duration", time.Since(start),
		}
		if nav.Resolution.Matched {
			attrs = append(attrs, "route", nav.Resolution.Entry.Path, "view", string(nav.Resolution.Entry.View))
		}

		switch {
		case err == nil && nav.Resolution.Matched:
			logger.Info("navigated", attrs...)
		case err == nil:
			logger.Warn("navigated to unmatched path", attrs...)
		case errors.Is(err, router.ErrNavigationCancelled):
			logger.Info("navigation cancelled", attrs...)
		default:
			logger.Error("navigation failed", append(attrs, "error", err)...)
		}
		return err
	})
}
