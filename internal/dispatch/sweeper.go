package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BatchRunner is the surface the sweeper and the HTTP layer drive.
type BatchRunner interface {
	Run(ctx context.Context, claimID string) (*BatchResult, error)
}

// Sweeper periodically invokes the dispatcher for deployments that have no
// external scheduler. It is optional: a zero interval means dispatch happens
// only on explicit invocation.
type Sweeper struct {
	runner   BatchRunner
	logger   *zap.Logger
	interval time.Duration
}

func NewSweeper(runner BatchRunner, interval time.Duration, logger *zap.Logger) (*Sweeper, error) {
	if runner == nil {
		return nil, fmt.Errorf("batch runner is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		runner:   runner,
		logger:   logger,
		interval: interval,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial sweep so already-pending jobs do not wait for the first
	// ticker edge.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.runner.Run(ctx, "")
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}

	if result.Found > 0 {
		s.logger.Info("sweep completed",
			zap.Int("found", result.Found),
			zap.Int("processed", result.Processed),
		)
	}
}
