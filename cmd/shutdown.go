package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// shutdownStack closes started components in reverse start order
type shutdownStack struct {
	steps []shutdownStep
}

type shutdownStep struct {
	name  string
	close func(ctx context.Context) error
}

func (s *shutdownStack) push(name string, fn func(ctx context.Context) error) {
	s.steps = append(s.steps, shutdownStep{name: name, close: fn})
}

// run closes every component, logging failures, and empties the stack
func (s *shutdownStack) run(ctx context.Context) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.close(ctx); err != nil {
			log.WithError(err).WithField("component", step.name).Warn("Error during shutdown")
		}
	}
	s.steps = nil
}
