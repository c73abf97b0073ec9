package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

func TestPeriodicJobRunsImmediatelyAndStops(t *testing.T) {
	var runs int32
	ctx, cancel := context.WithCancel(context.Background())

	job := NewPeriodicJob("test", time.Hour, true, func(context.Context) error {
		if atomic.AddInt32(&runs, 1) == 1 {
			cancel()
		}
		return errors.New("logged, not fatal")
	}, logger.Nop())

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestPeriodicJobTicks(t *testing.T) {
	ticked := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := NewPeriodicJob("tick", 10*time.Millisecond, false, func(context.Context) error {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil
	}, logger.Nop())
	go job.Start(ctx)

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
}
