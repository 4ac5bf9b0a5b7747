package chat

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// The error returned when the same room name is given twice.
var ErrDuplicateRoom = errors.New("duplicate room name")

// Broker is the fixed set of rooms, keyed by name. It is built once and never
// changes afterwards, so lookups need no locking.
type Broker struct {
	rooms map[string]*Room
	names []string // sorted

	closeOnce sync.Once
	closeErr  error
}

// Listing is a snapshot of one room for the directory shown to new
// connections.
type Listing struct {
	Name    string
	Members []string
}

// NewBroker creates one room per name and starts each room's delivery loop.
func NewBroker(names ...string) (*Broker, error) {
	b := &Broker{
		rooms: make(map[string]*Room, len(names)),
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		if _, found := b.rooms[name]; found {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoom, name)
		}
		room, err := NewRoom(name)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", name, err)
		}
		b.rooms[name] = room
		b.names = append(b.names, name)
	}
	sort.Strings(b.names)

	for _, room := range b.rooms {
		go room.Serve()
	}
	return b, nil
}

// FindRoom looks up a room by its exact, case-sensitive name.
func (b *Broker) FindRoom(name string) (*Room, bool) {
	room, ok := b.rooms[name]
	return room, ok
}

// Rooms returns every room ordered by name.
func (b *Broker) Rooms() []*Room {
	rooms := make([]*Room, len(b.names))
	for i, name := range b.names {
		rooms[i] = b.rooms[name]
	}
	return rooms
}

// List snapshots each room's members. Each room is read under its own lock, so
// rooms may be inconsistent with each other if members move concurrently.
func (b *Broker) List() []Listing {
	listing := make([]Listing, len(b.names))
	for i, room := range b.Rooms() {
		listing[i] = Listing{
			Name:    room.Name(),
			Members: room.Names(),
		}
	}
	return listing
}

// SetLogging mirrors every room's deliveries to out.
func (b *Broker) SetLogging(out io.Writer) {
	for _, room := range b.rooms {
		room.SetLogging(out)
	}
}

// Close stops every room, waiting up to timeout for each delivery loop. Rooms
// are stopped in parallel. Calling Close again returns the first result.
func (b *Broker) Close(timeout time.Duration) error {
	b.closeOnce.Do(func() {
		var wg sync.WaitGroup
		errs := make([]error, len(b.names))
		for i, room := range b.Rooms() {
			wg.Add(1)
			go func(i int, room *Room) {
				defer wg.Done()
				errs[i] = room.Stop(timeout)
			}(i, room)
		}
		wg.Wait()
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}
