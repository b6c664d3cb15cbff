package workers

import (
	"context"
	"time"

	"jobboard_backend/internal/logger"
)

// Cleaner - хранилище, которое умеет выбрасывать устаревшие записи
type Cleaner interface {
	Cleanup()
}

type LimiterCleanupWorker struct {
	cleaner  Cleaner
	interval time.Duration
}

func NewLimiterCleanupWorker(cleaner Cleaner, interval time.Duration) *LimiterCleanupWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LimiterCleanupWorker{cleaner: cleaner, interval: interval}
}

// Start запускает фоновую очистку лимитеров отправки
func (w *LimiterCleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// run удаляет bucket'ы отправителей, которые давно не писали
func (w *LimiterCleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Limiter cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleaner.Cleanup()
		}
	}
}
