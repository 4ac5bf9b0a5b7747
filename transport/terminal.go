package transport

import (
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

type ptyRequestMsg struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

type windowChangeMsg struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

// sshConn is one session channel. When the client asked for a pty, reads and
// writes go through a term.Terminal so that line editing and echo work, and
// every line read is handed out with its newline restored.
type sshConn struct {
	ssh.Channel
	conn *ssh.ServerConn
	term *term.Terminal

	buf []byte // rest of the last terminal line

	done      chan struct{}
	closeOnce sync.Once
}

func newSSHConn(conn *ssh.ServerConn, channel ssh.Channel, pty *ptyRequestMsg) *sshConn {
	c := &sshConn{
		Channel: channel,
		conn:    conn,
		done:    make(chan struct{}),
	}
	if pty != nil {
		c.term = term.NewTerminal(channel, "")
		c.term.SetSize(int(pty.Columns), int(pty.Rows))
	}
	go func() {
		conn.Wait()
		c.Close()
	}()
	return c
}

func (c *sshConn) Read(p []byte) (int, error) {
	if c.term == nil {
		return c.Channel.Read(p)
	}
	if len(c.buf) == 0 {
		line, err := c.term.ReadLine()
		if err != nil {
			return 0, err
		}
		c.buf = []byte(line + "\n")
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

func (c *sshConn) Write(p []byte) (int, error) {
	if c.term == nil {
		return c.Channel.Write(p)
	}
	return c.term.Write(p)
}

func (c *sshConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close the channel and the ssh connection under it.
func (c *sshConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = MultiCloser{c.Channel, c.conn}.Close()
	})
	return err
}

// listen handles requests arriving after the shell has started.
func (c *sshConn) listen(requests <-chan *ssh.Request) {
	for req := range requests {
		ok := false
		switch req.Type {
		case "window-change":
			msg := windowChangeMsg{}
			if err := ssh.Unmarshal(req.Payload, &msg); err == nil && c.term != nil {
				ok = c.term.SetSize(int(msg.Columns), int(msg.Rows)) == nil
			}
		}
		if req.WantReply {
			req.Reply(ok, nil)
		}
	}
}

// keepAlive pings the client every interval, there's no useful response from
// these so it stops at the first error.
func (c *sshConn) keepAlive(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			_, err := c.Channel.SendRequest("keepalive@openssh.com", true, nil)
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
