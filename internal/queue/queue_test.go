package queue

import (
	"sync"
	"testing"
	"time"
)

func TestQueueRunsInOrder(t *testing.T) {
	q := New()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		q.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Wait()

	if len(got) != 50 {
		t.Fatalf("expected 50 jobs to run, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestQueueSubmitDoesNotBlock(t *testing.T) {
	q := New()
	release := make(chan struct{})
	q.Submit(func() { <-release })

	done := make(chan struct{})
	go func() {
		q.Submit(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked behind a running job")
	}

	close(release)
	q.Wait()
}

func TestQueueRestartsAfterDrain(t *testing.T) {
	q := New()
	count := 0
	q.Submit(func() { count++ })
	q.Wait()
	q.Submit(func() { count++ })
	q.Wait()

	if count != 2 {
		t.Errorf("expected 2 jobs, got %d", count)
	}
}
