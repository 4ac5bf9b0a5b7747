package transport

import (
	"errors"
	"io"
	"net"
)

// ErrListenerClosed is returned by Accept once the listener is closed.
var ErrListenerClosed = errors.New("listener closed")

// Conn is one accepted client stream.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Listener yields accepted connections.
type Listener interface {
	// Accept blocks until the next connection is ready. It returns
	// ErrListenerClosed after Close.
	Accept() (Conn, error)
	Close() error
	Addr() net.Addr
}
