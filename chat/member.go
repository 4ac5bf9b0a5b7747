package chat

// Member is anything that can sit in a room and receive its broadcasts.
//
// Members are compared by identity, not by name: two members may share a name.
type Member interface {
	Name() string

	// Send writes one rendered line to the member. It is called from the
	// room's delivery goroutine while the room is locked, so it must not call
	// back into the same room.
	Send(line string) error
}
