package braille

import (
	"sync"
)

// task is one device call run by the worker.
type task struct {
	op string
	// coalesce, when set, replaces a still-queued task with the same key.
	coalesce string
	run      func(Device) error
	// onSuccess runs on the loop after run returned nil.
	onSuccess func()
}

// worker runs device calls one at a time on its own goroutine, so the loop
// never blocks on the display.
type worker struct {
	dev      Device
	capacity int
	started  func(seq uint64, t *task)
	done     func(seq uint64, t *task, err error)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*task
	closed bool
	seq    uint64
	exited chan struct{}
}

func newWorker(dev Device, capacity int, started func(uint64, *task), done func(uint64, *task, error)) *worker {
	w := &worker{
		dev:      dev,
		capacity: capacity,
		started:  started,
		done:     done,
		exited:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worker) start() {
	go w.run()
}

func (w *worker) submit(t *task) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrQueueClosed
	}
	if t.coalesce != "" {
		for i, q := range w.queue {
			if q.coalesce == t.coalesce {
				w.queue[i] = t
				return nil
			}
		}
	}
	if len(w.queue) >= w.capacity {
		return ErrQueueFull
	}
	w.queue = append(w.queue, t)
	w.cond.Signal()
	return nil
}

// close queues final tasks and stops accepting new ones. The worker exits
// once the queue is drained.
func (w *worker) close(final ...*task) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.queue = append(w.queue, final...)
	w.closed = true
	w.cond.Broadcast()
}

// abort drops queued tasks and closes the device so a blocked call
// returns.
func (w *worker) abort() {
	w.mu.Lock()
	wasClosed := w.closed
	w.queue = nil
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	if !wasClosed {
		go w.dev.Close()
	}
}

func (w *worker) run() {
	defer close(w.exited)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		t := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.seq++
		seq := w.seq
		w.mu.Unlock()

		w.started(seq, t)
		err := t.run(w.dev)
		w.done(seq, t, err)
	}
}
