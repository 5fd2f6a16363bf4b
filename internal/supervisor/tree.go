// Package supervisor runs the long-lived services of the process under a
// suture supervision tree.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"feedback/internal/logging"
)

// TreeConfig tunes restart behavior.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig returns the restart policy used in production.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the root supervisor.
type Tree struct {
	root *suture.Supervisor
}

// NewTree builds a supervisor whose events are logged through zerolog.
func NewTree(config TreeConfig) *Tree {
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	root := suture.New("feedback", suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	})
	return &Tree{root: root}
}

// Add registers a service.
func (t *Tree) Add(svc suture.Service) suture.ServiceToken {
	return t.root.Add(svc)
}

// Serve runs the tree until ctx is cancelled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func eventHook(e suture.Event) {
	log := logging.WithComponent("supervisor")
	switch e.Type() {
	case suture.EventTypeServicePanic, suture.EventTypeStopTimeout:
		log.Error().Fields(e.Map()).Msg(e.String())
	case suture.EventTypeServiceTerminate, suture.EventTypeBackoff:
		log.Warn().Fields(e.Map()).Msg(e.String())
	default:
		log.Info().Fields(e.Map()).Msg(e.String())
	}
}
