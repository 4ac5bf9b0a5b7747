package transport

import (
	"errors"
	"net"
	"sync/atomic"
)

// TCPListener serves plain line-oriented TCP connections.
type TCPListener struct {
	socket net.Listener
	closed atomic.Bool
}

// ListenTCP opens a TCP listener on laddr, such as "0.0.0.0:2022".
func ListenTCP(laddr string) (*TCPListener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{socket: socket}, nil
}

// Accept waits for the next TCP connection.
func (l *TCPListener) Accept() (Conn, error) {
	conn, err := l.socket.Accept()
	if err != nil {
		if l.closed.Load() || errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}
	return conn, nil
}

func (l *TCPListener) Addr() net.Addr {
	return l.socket.Addr()
}

func (l *TCPListener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.socket.Close()
}
