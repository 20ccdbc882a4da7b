package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type contextKey string

// NewRelicContextKey is the context key holding the *newrelic.Application
// that metrics and events are recorded against
const NewRelicContextKey = contextKey("new_relic_application")

// NewContextWithNewRelic returns a copy of ctx carrying app. A nil app
// leaves ctx untouched, which disables recording.
func NewContextWithNewRelic(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func newRelicFromContext(ctx context.Context) (*newrelic.Application, bool) {
	if ctx == nil {
		return nil, false
	}

	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr, ok && nr != nil
}
