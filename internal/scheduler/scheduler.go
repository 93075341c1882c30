// Package scheduler は開催日時を過ぎた募集を定期的に出発させる
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type DueStarter interface {
	StartDue(ctx context.Context) (int, error)
}

type Recorder interface {
	ScheduledStarts(n int)
}

type nopRecorder struct{}

func (nopRecorder) ScheduledStarts(int) {}

type Scheduler struct {
	starter  DueStarter
	interval time.Duration
	recorder Recorder
	logger   *zap.SugaredLogger
}

// New は interval ごとに starter を呼ぶスケジューラを作成する。recorder は nil でもよい
func New(starter DueStarter, interval time.Duration, recorder Recorder, logger *zap.SugaredLogger) *Scheduler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Scheduler{
		starter:  starter,
		interval: interval,
		recorder: recorder,
		logger:   logger,
	}
}

// Run は ctx がキャンセルされるまでブロックする。起動直後にも1回実行する
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infow("Scheduler started", "interval", s.interval)

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	started, err := s.starter.StartDue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Errorw("Failed to start due recruitments", "error", err)
		}
		return
	}
	if started > 0 {
		s.recorder.ScheduledStarts(started)
		s.logger.Infow("Started due recruitments", "count", started)
	}
}
