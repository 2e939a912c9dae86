package queue

import "sync"

// Queue runs submitted jobs one at a time, in submission order, on a
// background goroutine. Submit never blocks on a running job, so a slow
// storage write only delays the writes queued behind it.
//
// The queue is unbounded and starts a worker lazily; the worker exits when
// the queue drains.
type Queue struct {
	mu      sync.Mutex
	jobs    []func()
	running bool
	pending sync.WaitGroup
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Submit appends job to the queue.
func (q *Queue) Submit(job func()) {
	q.pending.Add(1)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	if !q.running {
		q.running = true
		go q.drain()
	}
}

// Wait blocks until every job submitted so far has finished.
func (q *Queue) Wait() {
	q.pending.Wait()
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		job()
		q.pending.Done()
	}
}
