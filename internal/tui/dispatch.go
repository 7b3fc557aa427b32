package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type dispatchMsg struct{}

// dispatchQueue carries engine callbacks onto the bubbletea goroutine. Dispatch never
// blocks and never runs fn itself; Update drains the queue when a dispatchMsg arrives.
type dispatchQueue struct {
	mu     sync.Mutex
	fns    []func()
	notify chan struct{}
}

func newDispatchQueue() *dispatchQueue {
	return &dispatchQueue{notify: make(chan struct{}, 1)}
}

func (q *dispatchQueue) Dispatch(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *dispatchQueue) drain() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	fns := q.fns
	q.fns = nil
	return fns
}

// wait is re-armed after every drain.
func (q *dispatchQueue) wait() tea.Cmd {
	return func() tea.Msg {
		<-q.notify
		return dispatchMsg{}
	}
}
