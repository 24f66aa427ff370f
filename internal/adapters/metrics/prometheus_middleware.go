package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
)

// PrometheusMiddleware records the duration and status of every request
// sent through the mediator. A nil collector disables it.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := commandName(request)
		done := collector.started(name)
		defer done()

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err)

		return response, err
	}
}

// commandName strips the pointer and package prefix:
// "*docking.RunStationCommand" becomes "RunStationCommand"
func commandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
