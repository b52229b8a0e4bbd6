package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

// blockingService runs until stopped, the way the console acceptor does.
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (s *blockingService) Start() error {
	s.started.Store(true)
	if s.startFn != nil {
		return s.startFn()
	}
	for !s.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (s *blockingService) Stop() {
	s.stopped.Store(true)
}

func TestLifecycle_RunsServicesUntilCancelled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	console := &blockingService{}
	janitor := &blockingService{}

	lc.Add("console", console)
	lc.Add("janitor", janitor)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if console.started.Load() && janitor.started.Load() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	assert.True(t, console.started.Load())
	assert.True(t, janitor.started.Load())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, console.stopped.Load())
	assert.True(t, janitor.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}
