package queue

import (
	"context"
	"sort"
	"sync"
)

// MemoryQueue is an in-process Client used in tests and local runs without a
// broker. Jobs are served lowest priority number first, FIFO within a tier.
type MemoryQueue struct {
	mu      sync.Mutex
	seq     uint64
	pending []memoryJob

	active    int64
	completed int64
	failed    int64
}

type memoryJob struct {
	job *Job
	seq uint64
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	q.pending = append(q.pending, memoryJob{job: job, seq: q.seq})
	sort.SliceStable(q.pending, func(i, j int) bool {
		if q.pending[i].job.Priority != q.pending[j].job.Priority {
			return q.pending[i].job.Priority < q.pending[j].job.Priority
		}
		return q.pending[i].seq < q.pending[j].seq
	})

	return nil
}

// Dequeue pops the highest-priority pending job, reporting false when the
// queue is drained.
func (q *MemoryQueue) Dequeue() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	next := q.pending[0].job
	q.pending = q.pending[1:]
	q.active++
	return next, true
}

func (q *MemoryQueue) MarkCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active--
	q.completed++
}

func (q *MemoryQueue) MarkFailed() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active--
	q.failed++
}

func (q *MemoryQueue) JobCounts(_ context.Context) (JobCounts, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return JobCounts{
		Waiting:   int64(len(q.pending)),
		Active:    q.active,
		Completed: q.completed,
		Failed:    q.failed,
	}, nil
}

func (q *MemoryQueue) Shutdown() error {
	return nil
}
