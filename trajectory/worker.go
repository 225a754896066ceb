package trajectory

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var errLoopExited = errors.New("cannot send to a worker whose loop has exited")

// Worker runs a loop function in a background goroutine which receives
// commands of type Cmd and publishes results of type Res.
type Worker[Cmd, Res any] struct {
	cmds    chan Cmd
	results chan Res
	done    chan struct{}

	mu     sync.Mutex
	closed bool

	errMu sync.Mutex
	err   error
}

// Receiver is the command end of a Worker, handed to its loop function.
type Receiver[Cmd any] struct {
	cmds <-chan Cmd
}

// Batch is every command that was waiting when a loop asked for work.
type Batch[Cmd any] struct {
	Head Cmd
	Tail []Cmd
}

// Recv blocks until a command arrives. ok is false once the worker has
// been closed and every command has been received.
func (r *Receiver[Cmd]) Recv() (cmd Cmd, ok bool) {
	cmd, ok = <-r.cmds
	return cmd, ok
}

// RecvBatch blocks until a command arrives and then drains any others
// which are already queued without blocking.
func (r *Receiver[Cmd]) RecvBatch() (b Batch[Cmd], ok bool) {
	head, ok := <-r.cmds
	if !ok {
		return b, false
	}
	b.Head = head
	for {
		select {
		case cmd, ok := <-r.cmds:
			if !ok {
				return b, true
			}
			b.Tail = append(b.Tail, cmd)
		default:
			return b, true
		}
	}
}

// Len returns the number of commands in the batch.
func (b Batch[Cmd]) Len() int { return 1 + len(b.Tail) }

// Latest returns the most recent command.
func (b Batch[Cmd]) Latest() Cmd {
	if len(b.Tail) == 0 {
		return b.Head
	}
	return b.Tail[len(b.Tail)-1]
}

// FindOrLatest returns the first command satisfying pred, or the most
// recent one if none do.
func (b Batch[Cmd]) FindOrLatest(pred func(Cmd) bool) Cmd {
	if pred(b.Head) {
		return b.Head
	}
	for _, cmd := range b.Tail {
		if pred(cmd) {
			return cmd
		}
	}
	return b.Latest()
}

// NewWorker starts loop in a new goroutine. The loop should return once
// its Receiver reports that the worker is closed. Results passed to send
// are kept until read. If the buffer is full the oldest unread result is
// discarded.
func NewWorker[Cmd, Res any](
	buffer int, loop func(rx *Receiver[Cmd], send func(Res)),
) *Worker[Cmd, Res] {
	if buffer < 1 {
		buffer = 1
	}
	w := &Worker[Cmd, Res]{
		cmds:    make(chan Cmd, buffer),
		results: make(chan Res, buffer),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("Worker loop panicked: %v", r)
				w.errMu.Lock()
				w.err = errors.Errorf("worker loop panicked: %v", r)
				w.errMu.Unlock()
			}
		}()
		loop(&Receiver[Cmd]{w.cmds}, w.publish)
	}()

	return w
}

func (w *Worker[Cmd, Res]) publish(r Res) {
	for {
		select {
		case w.results <- r:
			return
		default:
			select {
			case <-w.results:
			default:
			}
		}
	}
}

// Send queues a command for the worker. It blocks if the command buffer is
// full and fails once the worker has been closed.
func (w *Worker[Cmd, Res]) Send(cmd Cmd) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("cannot send to a closed worker")
	}
	select {
	case <-w.done:
		return errLoopExited
	default:
	}
	select {
	case w.cmds <- cmd:
		return nil
	case <-w.done:
		return errLoopExited
	}
}

// TryRecv returns a pending result without blocking.
func (w *Worker[Cmd, Res]) TryRecv() (r Res, ok bool) {
	select {
	case r = <-w.results:
		return r, true
	default:
		return r, false
	}
}

// TryRecvLatest drains every pending result and returns the newest one.
func (w *Worker[Cmd, Res]) TryRecvLatest() (r Res, ok bool) {
	for {
		next, got := w.TryRecv()
		if !got {
			return r, ok
		}
		r, ok = next, true
	}
}

// Recv blocks until a result is available or the loop exits.
func (w *Worker[Cmd, Res]) Recv() (r Res, ok bool) {
	select {
	case r = <-w.results:
		return r, true
	case <-w.done:
		return w.TryRecv()
	}
}

// Close stops accepting commands. The loop sees the closure after it has
// received everything already queued.
func (w *Worker[Cmd, Res]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.cmds)
	}
}

// Join closes the worker, waits for its loop to exit and returns an error
// if the loop panicked.
func (w *Worker[Cmd, Res]) Join() error {
	w.Close()
	<-w.done
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
