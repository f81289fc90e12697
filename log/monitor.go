package log

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = 1 * time.Hour

// Monitor periodically logs uptime, goroutine count and heap size until stopped.
type Monitor struct {
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	interval  time.Duration
}

func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		interval:  interval,
	}
}

func (m *Monitor) StopMonitor() {
	m.cancel()
}

// Uptime is the time elapsed since the monitor was created.
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func (m *Monitor) StartMonitor() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				L().Info("service uptime",
					zap.Duration("uptime", m.Uptime().Truncate(time.Second)),
					zap.Int("goroutines", runtime.NumGoroutine()),
					zap.Uint64("heap_alloc_mb", ms.HeapAlloc>>20))
			case <-m.ctx.Done():
				L().Info("monitor stopped", zap.Duration("uptime", m.Uptime().Truncate(time.Second)))
				return
			}
		}
	}()
}
