package workerpool

import "sync"

// Job is a unit of work submitted to a Pool.
type Job func() error

// Pool runs submitted jobs on a fixed number of worker goroutines.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Job
	inflight int
	stopped  bool
	err      error
}

// New creates a pool with the given number of workers.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

// Add enqueues jobs for execution.
func (p *Pool) Add(jobs []Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.queue = append(p.queue, jobs...)
	p.cond.Broadcast()
}

// Wait blocks until all enqueued jobs have completed or the pool is stopped.
// It returns the first error returned by any job.
func (p *Pool) Wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for (len(p.queue) > 0 || p.inflight > 0) && !p.stopped {
		p.cond.Wait()
	}
	return p.err
}

// Stop discards pending jobs and shuts the workers down. Jobs already running
// are allowed to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.queue = nil
	p.cond.Broadcast()
}

func (p *Pool) run() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.inflight++
		p.mu.Unlock()

		err := job()

		p.mu.Lock()
		p.inflight--
		if err != nil && p.err == nil {
			p.err = err
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}
