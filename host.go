package roomchat

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/internal/humantime"
	"github.com/shazow/room-chat/transport"
)

const acceptBackoff = 50 * time.Millisecond

const (
	namePrompt = "\nEnter your chat name (no spaces):\n"
	roomPrompt = "Enter chat room:\n"
)

// Host is the bridge between the transport and chat modules
type Host struct {
	broker *chat.Broker
}

// NewHost creates a Host serving the rooms of broker.
func NewHost(broker *chat.Broker) *Host {
	return &Host{
		broker: broker,
	}
}

// Directory renders every room with its current members, as shown to new
// connections.
func (h *Host) Directory() string {
	var b strings.Builder
	b.WriteString("Chat Rooms:\n\n")
	for _, room := range h.broker.List() {
		b.WriteString(room.Name + ":")
		for _, name := range room.Members {
			b.WriteString(" " + name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Connect runs one session on conn until it disconnects. The connection is
// always closed on return.
func (h *Host) Connect(conn transport.Conn) {
	s := newSession(conn)
	defer func() {
		if err := s.Close(); err != nil {
			logger.Debugf("[%s] Failed to close: %s", s.ID(), err)
		}
	}()
	logger.Debugf("[%s] Connected: %s", s.ID(), conn.RemoteAddr())

	if err := s.Send(h.Directory() + namePrompt); err != nil {
		logger.Debugf("[%s] Failed to write directory: %s", s.ID(), err)
		return
	}
	name, err := s.readToken()
	if err != nil {
		logger.Debugf("[%s] Disconnected before registering: %s", s.ID(), err)
		return
	}
	s.name = name

	room, err := h.selectRoom(s)
	if err != nil {
		logger.Debugf("[%s] Disconnected before joining: %s", s.ID(), err)
		return
	}
	if err := room.Join(s); err != nil {
		logger.Errorf("[%s] Failed to join %s: %s", s.ID(), room.Name(), err)
		return
	}
	s.room = room
	s.joined = time.Now()
	room.Publish(chat.JoinMsg(s.Name()))
	logger.Debugf("[%s] Joined %s: %s", s.ID(), room.Name(), s.Name())

	for {
		line, err := s.readLine()
		if err == io.EOF {
			// Closed
			break
		} else if err == errInputTooLong {
			s.Send("Message rejected: Input too long.\n")
			continue
		} else if err != nil {
			logger.Errorf("[%s] Reading error: %s", s.ID(), err)
			break
		}
		if chat.IsBlank(line) {
			// Silently ignore empty lines.
			continue
		}
		if err := room.Publish(chat.PublicMsg(s.Name(), line)); err != nil {
			logger.Debugf("[%s] Dropped message: %s", s.ID(), err)
			break
		}
	}

	if err := room.Leave(s); err != nil {
		logger.Errorf("[%s] Failed to leave %s: %s", s.ID(), room.Name(), err)
	}
	room.Publish(chat.LeaveMsg(s.Name()))
	logger.Debugf("[%s] Leaving %s: %s (connected %s)", s.ID(), room.Name(), s.Name(), humantime.Since(s.joined))
}

// selectRoom prompts until the user names a room that exists.
func (h *Host) selectRoom(s *Session) (*chat.Room, error) {
	for {
		if err := s.Send(roomPrompt); err != nil {
			return nil, err
		}
		name, err := s.readToken()
		if err != nil {
			return nil, err
		}
		room, ok := h.broker.FindRoom(name)
		if ok {
			return room, nil
		}
		if err := s.Send(fmt.Sprintf("No chat room %s.\n", name)); err != nil {
			return nil, err
		}
	}
}

// Serve accepts connections from l until it is closed, running a session for
// each in its own goroutine.
func (h *Host) Serve(l transport.Listener) error {
	for {
		conn, err := l.Accept()
		if err == transport.ErrListenerClosed {
			return nil
		} else if err != nil {
			logger.Errorf("Failed to accept connection: %s", err)
			time.Sleep(acceptBackoff)
			continue
		}
		go h.Connect(conn)
	}
}
