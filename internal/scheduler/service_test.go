package scheduler

import (
	"context"
	"errors"
	"testing"
)

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type fakeLock struct {
	locked   bool
	acquires int
	releases int
	err      error
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return l.locked, l.err
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func newTestService(t *testing.T, registry *Registry, lock Lock) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	first := &recordingJob{name: "first"}
	second := &recordingJob{name: "second"}
	lock := &fakeLock{locked: true}
	service := newTestService(t, NewRegistry(first, second), lock)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle returned error: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected both jobs to run once, got %d and %d", first.runs, second.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &recordingJob{name: "noop"}
	lock := &fakeLock{locked: false}
	service := newTestService(t, NewRegistry(job), lock)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle returned error: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("an unheld lock must not be released")
	}
}

func TestRunCycleContinuesPastFailingJob(t *testing.T) {
	failing := &recordingJob{name: "failing", err: errors.New("boom")}
	healthy := &recordingJob{name: "healthy"}
	service := newTestService(t, NewRegistry(failing, healthy), &fakeLock{locked: true})

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle returned error: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatalf("healthy job must run after a failure")
	}
}
