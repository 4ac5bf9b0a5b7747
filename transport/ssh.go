package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const defaultKeepAlive = 30 * time.Second

// How long a client gets to finish the handshake and ask for a shell.
const handshakeTimeout = 30 * time.Second

var errNoShell = errors.New("session closed before shell request")

// SSHListener accepts SSH connections and yields the first session channel of
// each as a Conn.
type SSHListener struct {
	socket net.Listener
	config *ssh.ServerConfig

	// KeepAlive is the interval between keepalive requests. Zero disables them.
	KeepAlive time.Duration

	conns     chan Conn
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// ListenSSH makes an SSH listener socket.
func ListenSSH(laddr string, config *ssh.ServerConfig) (*SSHListener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	l := SSHListener{
		socket:    socket,
		config:    config,
		KeepAlive: defaultKeepAlive,
		conns:     make(chan Conn),
		done:      make(chan struct{}),
	}
	return &l, nil
}

// Accept waits for the next client that has finished its handshake and
// requested a shell.
func (l *SSHListener) Accept() (Conn, error) {
	l.startOnce.Do(func() {
		go l.serve()
	})
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.done:
		return nil, ErrListenerClosed
	}
}

func (l *SSHListener) Addr() net.Addr {
	return l.socket.Addr()
}

func (l *SSHListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.socket.Close()
	})
	return err
}

func (l *SSHListener) serve() {
	defer l.Close()
	for {
		conn, err := l.socket.Accept()
		if err != nil {
			select {
			case <-l.done:
			default:
				logger.Printf("Failed to accept connection: %v", err)
			}
			return
		}

		// Goroutineify to resume accepting sockets early
		go func() {
			c, err := l.handleConn(conn)
			if err != nil {
				logger.Printf("[%s] Failed to handshake: %v", conn.RemoteAddr(), err)
				conn.Close()
				return
			}
			select {
			case l.conns <- c:
			case <-l.done:
				c.Close()
			}
		}()
	}
}

func (l *SSHListener) handleConn(conn net.Conn) (*sshConn, error) {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	// Upgrade TCP connection to SSH connection
	serverConn, channels, requests, err := ssh.NewServerConn(conn, l.config)
	if err != nil {
		return nil, err
	}

	// FIXME: Disconnect if too many faulty requests? (Avoid DoS.)
	go ssh.DiscardRequests(requests)

	c, err := newSession(serverConn, channels)
	if err != nil {
		serverConn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	if l.KeepAlive > 0 {
		go c.keepAlive(l.KeepAlive)
	}
	return c, nil
}

// newSession finds the session channel, accepts it and waits for the shell
// request. Every other channel is rejected.
func newSession(conn *ssh.ServerConn, channels <-chan ssh.NewChannel) (*sshConn, error) {
	var c *sshConn
	for ch := range channels {
		if t := ch.ChannelType(); t != "session" {
			ch.Reject(ssh.UnknownChannelType, fmt.Sprintf("unknown channel type: %s", t))
			continue
		}

		channel, requests, err := ch.Accept()
		if err != nil {
			return nil, err
		}
		c, err = negotiate(conn, channel, requests)
		if err != nil {
			return nil, err
		}
		break
	}
	if c == nil {
		return nil, errNoShell
	}

	// Reject the rest.
	go func() {
		for ch := range channels {
			ch.Reject(ssh.Prohibited, "only one session allowed")
		}
	}()
	return c, nil
}

// negotiate consumes channel requests until the client asks for a shell,
// remembering whether a pty was requested along the way.
func negotiate(conn *ssh.ServerConn, channel ssh.Channel, requests <-chan *ssh.Request) (*sshConn, error) {
	var pty *ptyRequestMsg
	for req := range requests {
		ok := false
		switch req.Type {
		case "shell":
			ok = true
		case "pty-req":
			msg := ptyRequestMsg{}
			if err := ssh.Unmarshal(req.Payload, &msg); err == nil {
				pty = &msg
				ok = true
			}
		case "env":
			ok = true
		}
		if req.WantReply {
			req.Reply(ok, nil)
		}
		if req.Type != "shell" {
			continue
		}

		c := newSSHConn(conn, channel, pty)
		go c.listen(requests)
		return c, nil
	}
	channel.Close()
	return nil, errNoShell
}
