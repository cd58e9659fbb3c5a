package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-library/internal/observability"
)

type Job func(ctx context.Context) error

// Runner запускает фоновые задачи «выстрелил и забыл».
// Ошибки задач не возвращаются вызывающему: они логируются, считаются и уходят в sentry.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
	wg     sync.WaitGroup
}

// New: задачи получают значения parent, но не его отмену. Остановка сервиса по сигналу
// не обрывает уже поставленные письма; их обрывает только Wait по таймауту.
func New(parent context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &Runner{ctx: ctx, cancel: cancel, log: log}
}

// Go запускает задачу один раз. Контекст задачи не зависит от отмены запроса.
func (r *Runner) Go(name string, fn Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(name, fn)
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	jobsInFlight.Inc()
	result := resultOK
	defer func() {
		if p := recover(); p != nil {
			result = resultPanic
			r.log.Error("job panic", zap.String("job", name), zap.Any("panic", p))
		}
		jobsInFlight.Dec()
		jobRuns.WithLabelValues(name, result).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()
	if err := fn(r.ctx); err != nil {
		result = resultError
		r.log.Warn("job failed", zap.String("job", name), zap.Error(err))
		observability.CaptureErr(err)
	}
}

// Wait ждёт завершения запущенных задач, но не дольше timeout.
// По таймауту контекст оставшихся задач отменяется.
func (r *Runner) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	defer r.cancel()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Inline выполняет задачи сразу в вызывающей горутине. Для тестов и CLI.
type Inline struct {
	Errs []error
}

func (i *Inline) Go(name string, fn Job) {
	if err := fn(context.Background()); err != nil {
		i.Errs = append(i.Errs, err)
	}
}
