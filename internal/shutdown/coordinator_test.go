package shutdown

import (
	"context"
	"testing"
	"time"
)

func TestZeroDurationExpiresImmediately(t *testing.T) {
	start := time.Now()
	c := New(0)
	c.Start(start)
	if c.State() != Running {
		t.Fatalf("expected running, got %s", c.State())
	}
	if !c.CheckDeadline(start) {
		t.Fatalf("expected deadline reached")
	}
	if !c.SaveScheduled() || !c.ShutdownScheduled() {
		t.Fatalf("expected both flags set")
	}
	if c.State() != SavePending {
		t.Fatalf("expected save-pending, got %s", c.State())
	}
	if c.Reason() != ReasonDeadline {
		t.Fatalf("expected deadline reason, got %q", c.Reason())
	}
}

func TestCheckDeadlineBeforeDeadline(t *testing.T) {
	start := time.Unix(1000, 0)
	c := New(time.Minute)
	c.Start(start)
	if c.CheckDeadline(start.Add(59 * time.Second)) {
		t.Fatalf("deadline reported early")
	}
	if c.SaveScheduled() || c.ShutdownScheduled() {
		t.Fatalf("flags set before deadline")
	}
	if !c.CheckDeadline(start.Add(time.Minute)) {
		t.Fatalf("expected deadline at exactly start+duration")
	}
}

func TestStateMovesForward(t *testing.T) {
	c := New(time.Hour)
	c.MarkSaved()
	c.MarkTerminated()
	if c.State() != Running {
		t.Fatalf("marks before scheduling must not advance, got %s", c.State())
	}
	c.Schedule(ReasonSignal)
	c.MarkSaved()
	if c.State() != ShutdownPending {
		t.Fatalf("expected shutdown-pending, got %s", c.State())
	}
	if c.SaveScheduled() {
		t.Fatalf("save should no longer be pending")
	}
	c.Schedule(ReasonDeadline)
	if c.State() != ShutdownPending {
		t.Fatalf("rescheduling moved state backwards: %s", c.State())
	}
	c.MarkTerminated()
	if c.State() != Terminated {
		t.Fatalf("expected terminated, got %s", c.State())
	}
	if c.Reason() != ReasonSignal {
		t.Fatalf("expected first reason kept, got %q", c.Reason())
	}
}

func TestScheduleWakes(t *testing.T) {
	c := New(time.Hour)
	c.Schedule(ReasonUser)
	c.Schedule(ReasonUser)
	select {
	case <-c.Wake():
	default:
		t.Fatalf("expected wake-up")
	}
}

func TestArmFiresAtDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := New(20 * time.Millisecond)
	c.Start(time.Now())
	c.Arm(ctx)
	select {
	case <-c.Wake():
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not fire")
	}
	if c.Reason() != ReasonDeadline || c.State() != SavePending {
		t.Fatalf("unexpected reason %q state %s", c.Reason(), c.State())
	}
}

func TestArmCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(50 * time.Millisecond)
	c.Start(time.Now())
	c.Arm(ctx)
	cancel()
	time.Sleep(100 * time.Millisecond)
	if c.ShutdownScheduled() {
		t.Fatalf("canceled timer still scheduled shutdown")
	}
}

func TestParseSignals(t *testing.T) {
	sigs, err := ParseSignals([]string{"int", "SIGTERM", "SIGINT", " "})
	if err != nil {
		t.Fatalf("ParseSignals: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected 2 signals, got %v", sigs)
	}
	if _, err := ParseSignals([]string{"SIGBOGUS"}); err == nil {
		t.Fatalf("expected error for unknown signal")
	}
}

func TestSaveNeverPendingWithoutShutdown(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := New(time.Hour)
		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Schedule(ReasonSignal)
		}()
		for {
			if c.SaveScheduled() {
				if !c.ShutdownScheduled() {
					t.Fatalf("run %d: save pending while shutdown is not", i)
				}
				break
			}
		}
		<-done
	}
}
