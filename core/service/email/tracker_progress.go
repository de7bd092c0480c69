package email

import (
	"sync"
	"time"

	"jobtracker_server/core/domain"
)

// Progress is the ordered event stream of one sync run.
//
// Any number of goroutines may emit. Emits are serialised so Seq is strictly
// increasing in delivery order. The first terminal event closes the stream and
// later emits are dropped. Once done is closed the listener is gone: emits are
// discarded instead of blocking, and the terminal event still closes the stream.
type Progress struct {
	mu     sync.Mutex
	ch     chan domain.SyncEvent
	done   <-chan struct{}
	seq    int64
	closed bool
	now    func() time.Time
}

// NewProgress creates a stream with the given buffer. done may be nil.
func NewProgress(buffer int, done <-chan struct{}) *Progress {
	if buffer < 0 {
		buffer = 0
	}
	return &Progress{
		ch:   make(chan domain.SyncEvent, buffer),
		done: done,
		now:  time.Now,
	}
}

// Events is the receive side. It is closed after the terminal event.
func (p *Progress) Events() <-chan domain.SyncEvent {
	return p.ch
}

func (p *Progress) Status(msg string) {
	p.emit(domain.SyncEvent{Type: domain.SyncEventStatus, Message: msg})
}

// Complete sends the result event and closes the stream.
func (p *Progress) Complete(result *domain.SyncResult) {
	p.emit(domain.SyncEvent{Type: domain.SyncEventResult, Result: result})
}

// Fail sends the error event and closes the stream.
func (p *Progress) Fail(msg string) {
	p.emit(domain.SyncEvent{Type: domain.SyncEventError, Error: msg})
}

// Closed reports whether the terminal event has been emitted.
func (p *Progress) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Progress) emit(ev domain.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.seq++
	ev.Seq = p.seq
	ev.Timestamp = p.now()

	select {
	case p.ch <- ev:
	case <-p.done:
	}

	if ev.Terminal() {
		p.closed = true
		close(p.ch)
	}
}
