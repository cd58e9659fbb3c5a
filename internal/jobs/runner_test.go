package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunnerGoAndWait(t *testing.T) {
	r := New(context.Background(), nil)
	var n atomic.Int32
	for i := 0; i < 5; i++ {
		r.Go("count", func(ctx context.Context) error {
			n.Add(1)
			return nil
		})
	}
	failedBefore := testutil.ToFloat64(jobRuns.WithLabelValues("fails", resultError))
	panickedBefore := testutil.ToFloat64(jobRuns.WithLabelValues("panics", resultPanic))
	r.Go("fails", func(ctx context.Context) error { return errors.New("smtp down") })
	r.Go("panics", func(ctx context.Context) error { panic("boom") })

	if !r.Wait(2 * time.Second) {
		t.Fatal("задачи не завершились вовремя")
	}
	if n.Load() != 5 {
		t.Fatalf("выполнено %d задач, ожидали 5", n.Load())
	}
	if got := testutil.ToFloat64(jobRuns.WithLabelValues("fails", resultError)) - failedBefore; got != 1 {
		t.Fatalf("ошибок посчитано %v, ожидали 1", got)
	}
	if got := testutil.ToFloat64(jobRuns.WithLabelValues("panics", resultPanic)) - panickedBefore; got != 1 {
		t.Fatalf("паник посчитано %v, ожидали 1", got)
	}
	if got := testutil.ToFloat64(jobsInFlight); got != 0 {
		t.Fatalf("in-flight после Wait = %v", got)
	}
}

func TestRunnerOutlivesParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	r := New(parent, nil)
	cancel()

	var delivered atomic.Bool
	r.Go("mail", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			delivered.Store(true)
			return nil
		}
	})
	if !r.Wait(2 * time.Second) {
		t.Fatal("задача не завершилась вовремя")
	}
	if !delivered.Load() {
		t.Fatal("отмена родителя не должна обрывать поставленную задачу")
	}
}

func TestRunnerWaitTimeoutCancelsJobs(t *testing.T) {
	r := New(context.Background(), nil)
	stopped := make(chan struct{})
	r.Go("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})
	if r.Wait(20 * time.Millisecond) {
		t.Fatal("Wait не должен дождаться зависшей задачи")
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("по таймауту Wait контекст задачи должен отмениться")
	}
}

func TestInlineCollectsErrors(t *testing.T) {
	var in Inline
	in.Go("ok", func(ctx context.Context) error { return nil })
	in.Go("bad", func(ctx context.Context) error { return errors.New("x") })
	if len(in.Errs) != 1 {
		t.Fatalf("ожидали одну ошибку, получили %d", len(in.Errs))
	}
}
