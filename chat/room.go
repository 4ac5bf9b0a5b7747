package chat

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// The error returned when a message is published to, or a member joins, a
// room that is already closed.
var ErrRoomClosed = errors.New("room closed")

// The error returned when a room is created with an invalid name, such as
// empty string.
var ErrInvalidName = errors.New("invalid name")

// The error returned when leaving a room the member is not in.
var ErrNotMember = errors.New("not a member")

// The error returned when a room's delivery loop does not exit in time.
var ErrStopTimeout = errors.New("room did not stop in time")

// Room is a named queue of lines and the set of members they are delivered to.
//
// members and pending are guarded by the same lock so that every delivery
// batch sees one consistent membership.
type Room struct {
	name string

	mu      sync.Mutex
	ready   *sync.Cond // pending became non-empty, or the room closed
	members []Member
	pending []string
	out     io.Writer

	started atomic.Bool
	closed  atomic.Bool
	done    chan struct{}
}

// NewRoom creates a new room. Serve must be running for anything published to
// be delivered.
func NewRoom(name string) (*Room, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	r := &Room{
		name: name,
		done: make(chan struct{}),
	}
	r.ready = sync.NewCond(&r.mu)
	return r, nil
}

// Name of the room.
func (r *Room) Name() string {
	return r.name
}

// SetLogging mirrors every delivered line to out, prefixed with the room name.
func (r *Room) SetLogging(out io.Writer) {
	r.mu.Lock()
	r.out = out
	r.mu.Unlock()
}

// Join adds m to the room. Joining twice without leaving in between makes m
// receive every line twice.
func (r *Room) Join(m Member) error {
	if r.closed.Load() {
		return ErrRoomClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, m)
	return nil
}

// Leave removes the first entry that is m itself. Other members with the same
// name are untouched.
func (r *Room) Leave(m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, member := range r.members {
		if member != m {
			continue
		}
		r.members = append(r.members[:i:i], r.members[i+1:]...)
		return nil
	}
	return ErrNotMember
}

// Publish queues a rendered line for delivery and returns without waiting for
// it to be delivered.
func (r *Room) Publish(line string) error {
	if r.closed.Load() {
		return ErrRoomClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, line)
	r.ready.Signal()
	return nil
}

// Names returns the names of the current members in join order.
func (r *Room) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.Name()
	}
	return names
}

// Len returns the number of members right now.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Serve runs the delivery loop until the room is stopped. It should be run in
// a goroutine, once.
func (r *Room) Serve() {
	if r.started.Swap(true) {
		return
	}
	defer close(r.done)
	for r.cycle() {
	}
}

// cycle waits for pending lines and delivers them as one batch. It returns
// false once the room is closed.
func (r *Room) cycle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.pending) == 0 && !r.closed.Load() {
		r.ready.Wait()
	}
	if r.closed.Load() {
		return false
	}

	batch := r.pending
	r.pending = nil

	for _, line := range batch {
		if r.closed.Load() {
			// In-flight lines are dropped on shutdown.
			return false
		}
		if r.out != nil {
			fmt.Fprintf(r.out, "[%s] %s", r.name, line)
		}
		for _, m := range r.members {
			if err := m.Send(line); err != nil {
				logger.Printf("[%s] Write failed to %s: %s", r.name, m.Name(), err)
			}
		}
	}
	return true
}

// Stop signals the delivery loop to exit and waits up to timeout for it. If
// the loop exits in time, the queue and membership are released. Stop does not
// notify members and drops anything still queued.
func (r *Room) Stop(timeout time.Duration) error {
	if r.closed.Swap(true) {
		return nil
	}

	// The loop may be holding the lock inside a slow write; wake it from a
	// separate goroutine so Stop itself stays bounded.
	go func() {
		r.mu.Lock()
		r.ready.Broadcast()
		r.mu.Unlock()
	}()

	if r.started.Load() {
		select {
		case <-r.done:
		case <-time.After(timeout):
			return fmt.Errorf("%s: %w", r.name, ErrStopTimeout)
		}
	}

	r.mu.Lock()
	r.pending = nil
	r.members = nil
	r.mu.Unlock()
	return nil
}
