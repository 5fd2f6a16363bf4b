package supervisor

import (
	"context"
	"time"

	"feedback/internal/logging"
)

// Sweeper removes expired sessions.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// SessionSweeperService calls the sweeper on a fixed interval.
type SessionSweeperService struct {
	sweeper  Sweeper
	interval time.Duration
}

// NewSessionSweeperService returns a service sweeping every interval.
func NewSessionSweeperService(sweeper Sweeper, interval time.Duration) *SessionSweeperService {
	return &SessionSweeperService{sweeper: sweeper, interval: interval}
}

// Serve implements suture.Service. Sweep failures are logged and retried
// on the next tick.
func (s *SessionSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log := logging.WithComponent("session-sweeper")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.sweeper.SweepExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("expired sessions removed")
			}
		}
	}
}

func (s *SessionSweeperService) String() string {
	return "session-sweeper"
}
