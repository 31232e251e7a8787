package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler("every tuesday", &MockBatchRunner{}, zap.NewNop())
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestSchedulerRunsBatch(t *testing.T) {
	runner := &MockBatchRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler("@every 1s", runner, zap.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if s.Next().IsZero() {
		t.Error("Next should be set once started")
	}

	select {
	case <-runner.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("batch did not run")
	}

	// lastRun is recorded right after ProcessAllPlayers returns
	deadline := time.Now().Add(time.Second)
	for {
		if res, ok := s.LastRun(); ok {
			if res.Processed != 3 {
				t.Errorf("LastRun = %+v", res)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("LastRun not recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
