package related

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"legal-reader/internal/logger"
	"legal-reader/internal/telemetry"
)

const (
	// DefaultCooldown keeps consecutive remote calls under a 60 requests/minute ceiling.
	DefaultCooldown = 1100 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateCooldown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCooldown:
		return "cooldown"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type QueueOptions struct {
	// Cooldown is the pause after every job before the next one starts.
	Cooldown time.Duration
	// Timeout bounds a single remote call. Zero means no bound.
	Timeout time.Duration
	Metrics *telemetry.Metrics
}

// Queue is a FIFO of related-sections jobs drained by a single worker, so at
// most one remote call is ever in flight.
type Queue struct {
	finder   Finder
	cooldown time.Duration
	timeout  time.Duration
	metrics  *telemetry.Metrics

	mu      sync.Mutex
	pending []*Job
	stopped bool
	notify  chan struct{}

	state   atomic.Int32
	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewQueue(finder Finder, opts QueueOptions) *Queue {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		finder:   finder,
		cooldown: opts.Cooldown,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		notify:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the worker. Calling it more than once has no effect.
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.mu.Lock()
		stopped := q.stopped
		q.mu.Unlock()
		if stopped {
			return
		}
		q.started.Store(true)
		logger.Info("Related-sections worker started", "cooldown", q.cooldown.String(), "timeout", q.timeout.String())
		go q.run()
	})
}

// Stop cancels the in-flight call, waits for the worker to exit and fails every
// job still waiting so no caller blocks forever.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.mu.Unlock()

		q.cancel()
		if q.started.Load() {
			<-q.done
		}

		q.mu.Lock()
		rest := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, job := range rest {
			job.fail(ErrQueueStopped)
		}
		q.state.Store(int32(StateStopped))
		logger.Info("Related-sections worker stopped", "failed_pending", len(rest))
	})
}

// Enqueue appends job to the queue. After Stop the job fails immediately.
func (q *Queue) Enqueue(job *Job) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		job.fail(ErrQueueStopped)
		return
	}
	job.enqueuedAt = time.Now()
	q.pending = append(q.pending, job)
	depth := len(q.pending)
	q.mu.Unlock()

	logger.Debug("Related-sections job queued", "job_id", job.ID, "key", job.Key, "depth", depth)

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len reports how many jobs are waiting, not counting the one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) State() State {
	return State(q.state.Load())
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		job, ok := q.next()
		if !ok {
			return
		}

		q.process(job)

		// The cooldown follows every job, including ones that made no remote call.
		q.state.Store(int32(StateCooldown))
		timer := time.NewTimer(q.cooldown)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		q.state.Store(int32(StateIdle))
	}
}

func (q *Queue) next() (*Job, bool) {
	for {
		if q.ctx.Err() != nil {
			return nil, false
		}

		q.mu.Lock()
		if len(q.pending) > 0 {
			job := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return job, true
		}
		q.mu.Unlock()

		select {
		case <-q.ctx.Done():
			return nil, false
		case <-q.notify:
		}
	}
}

func (q *Queue) process(job *Job) {
	q.state.Store(int32(StateProcessing))
	q.metrics.RecordQueueWait(time.Since(job.enqueuedAt))

	candidates := job.Candidates()
	if len(candidates) == 0 {
		job.succeed([]string{})
		return
	}

	ctx := q.ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(q.ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	titles, err := q.finder.FindRelated(ctx, job.Section, candidates)
	elapsed := time.Since(start)
	if err != nil {
		q.metrics.RecordRemoteCall("failure", elapsed)
		logger.Warn("Related-sections lookup failed",
			"job_id", job.ID, "key", job.Key, "duration", elapsed.String(), "error", err)
		job.fail(err)
		return
	}

	q.metrics.RecordRemoteCall("success", elapsed)
	if titles == nil {
		titles = []string{}
	}
	if len(titles) > MaxRelated {
		titles = titles[:MaxRelated]
	}
	logger.Debug("Related-sections lookup finished",
		"job_id", job.ID, "key", job.Key, "related", len(titles), "duration", elapsed.String())
	job.succeed(titles)
}
