package roomchat

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/transport"
)

const maxInputLength int = 1024

var errInputTooLong = errors.New("input too long")

// Session is the server side of one connected user. It is the chat.Member
// that rooms deliver to.
type Session struct {
	id     xid.ID
	conn   transport.Conn
	reader *bufio.Reader

	// Set once during registration, before the session is visible to any room.
	name   string
	room   *chat.Room
	joined time.Time

	mu sync.Mutex // serializes writes to conn
}

func newSession(conn transport.Conn) *Session {
	return &Session{
		id:     xid.New(),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// ID is unique per session, unlike Name.
func (s *Session) ID() string {
	return s.id.String()
}

// Name chosen by the user.
func (s *Session) Name() string {
	return s.name
}

// Send writes one line to the connection.
func (s *Session) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.conn, line)
	return err
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// readLine returns the next line with its newline. A final line cut short by
// end of stream is returned as is, and io.EOF comes on the next call. Lines
// over maxInputLength are consumed and reported as errInputTooLong.
func (s *Session) readLine() (string, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := s.reader.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxInputLength+2 {
				tooLong = true
				line = nil
			}
		}

		switch err {
		case bufio.ErrBufferFull:
			continue
		case nil:
			if tooLong || len(bytes.TrimRight(line, "\r\n")) > maxInputLength {
				return "", errInputTooLong
			}
			return string(line), nil
		case io.EOF:
			if len(line) > 0 && !tooLong {
				return string(line), nil
			}
		}
		return "", err
	}
}

// readToken returns the first word of the next non-blank line.
func (s *Session) readToken() (string, error) {
	for {
		line, err := s.readLine()
		if err == errInputTooLong {
			s.Send("Input too long.\n")
			continue
		}
		if err != nil {
			return "", err
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0], nil
		}
	}
}
