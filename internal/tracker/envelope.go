package tracker

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nhle/project-tracker/internal/apperr"
)

var mutationOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tracker_mutations_total",
		Help: "Mutations by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

// Result is the uniform outcome of a mutation. On success Entity is set
// and Errors is empty; on failure Entity is nil and Errors holds one
// message per failure.
type Result[T any] struct {
	Entity   *T
	Success  bool
	Errors   []string
	Failures []*apperr.Error
}

// Kinds returns the wire names of the failure kinds, in order.
func (r Result[T]) Kinds() []string {
	kinds := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		kinds[i] = f.Kind.String()
	}
	return kinds
}

// mutate runs fn and shapes its outcome into a Result. A panic inside fn
// is recovered into an Unexpected failure.
func mutate[T any](ctx context.Context, s *Service, op string, fn func() (*T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = failed[T](s, op, apperr.Unexpectedf(fmt.Errorf("panic: %v", r), "unexpected failure in %s", op))
		}
	}()

	entity, err := fn()
	if err != nil {
		return failed[T](s, op, err)
	}
	mutationOutcomes.WithLabelValues(op, "success").Inc()
	return Result[T]{Entity: entity, Success: true, Errors: []string{}, Failures: []*apperr.Error{}}
}

func failed[T any](s *Service, op string, err error) Result[T] {
	failures := apperr.Flatten(err)
	res := Result[T]{
		Errors:   make([]string, len(failures)),
		Failures: failures,
	}
	for i, f := range failures {
		res.Errors[i] = f.Message

		ev := s.log.Debug()
		if f.Kind == apperr.PersistenceFault || f.Kind == apperr.Unexpected {
			ev = s.log.Error()
		}
		ev.Err(f.Err).
			Str("operation", op).
			Str("kind", f.Kind.String()).
			Str("field", f.Field).
			Msg(f.Message)
	}
	outcome := apperr.Unexpected.String()
	if len(failures) > 0 {
		outcome = failures[0].Kind.String()
	}
	mutationOutcomes.WithLabelValues(op, outcome).Inc()
	return res
}
