package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNopAcceptsEverything(t *testing.T) {
	var d Nop
	ctx := context.Background()
	if err := d.Register(ctx, Summary{ID: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Update(ctx, Summary{ID: "a"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := d.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestGoReportsErrors(t *testing.T) {
	boom := errors.New("backend down")
	reported := make(chan error, 1)

	Go(func(context.Context) error { return boom }, func(err error) { reported <- err })

	select {
	case err := <-reported:
		if !errors.Is(err, boom) {
			t.Fatalf("reported %v, want %v", err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error never reported")
	}
}

func TestGoSwallowsErrorsWithoutReporter(t *testing.T) {
	done := make(chan struct{})
	Go(func(context.Context) error {
		defer close(done)
		return errors.New("ignored")
	}, nil)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("call never ran")
	}
}

func TestGoBoundsCallDuration(t *testing.T) {
	sawDeadline := make(chan bool, 1)
	Go(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		sawDeadline <- ok
		return nil
	}, nil)

	select {
	case ok := <-sawDeadline:
		if !ok {
			t.Fatal("dispatched call has no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("call never ran")
	}
}
