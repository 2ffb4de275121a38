package orders

import (
	"context"

	"go.uber.org/zap"
)

// compensation undoes one previously completed step of a multi-step call.
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// saga tracks the compensating actions of an in-flight operation. There is
// no transaction spanning the stores and the catalog, so each completed step
// registers its undo here and a later failure rolls everything back in LIFO
// order.
type saga struct {
	log   *zap.Logger
	steps []compensation
}

func newSaga(log *zap.Logger) *saga { return &saga{log: log} }

func (s *saga) add(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, undo: undo})
}

// rollback runs every registered compensation in reverse. The cause of the
// rollback is returned unchanged: a failing compensation is logged (and the
// order may be left dirty), but it never masks the reason the caller sees.
func (s *saga) rollback(ctx context.Context, cause error) error {
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			s.log.Error("compensation failed",
				zap.String("step", step.name),
				zap.NamedError("compensation_error", err),
				zap.NamedError("cause", cause))
		}
	}
	s.steps = nil
	return cause
}
