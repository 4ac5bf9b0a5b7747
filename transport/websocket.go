package transport

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

// WebsocketListener upgrades HTTP requests on one path to websocket
// connections. Each inbound text or binary message is one line of input and
// each Write is sent as one text message.
type WebsocketListener struct {
	socket   net.Listener
	server   *http.Server
	upgrader websocket.Upgrader

	conns     chan Conn
	done      chan struct{}
	closeOnce sync.Once
}

// ListenWebsocket starts an HTTP server on laddr that accepts websocket
// connections at path.
func ListenWebsocket(laddr string, path string) (*WebsocketListener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	l := &WebsocketListener{
		socket: socket,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(chan Conn),
		done:  make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle(path, l)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: handshakeTimeout,
	}
	go func() {
		err := l.server.Serve(socket)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Websocket server stopped: %v", err)
		}
		l.Close()
	}()
	return l, nil
}

// ServeHTTP upgrades the request and hands the connection to Accept.
func (l *WebsocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Printf("[%s] Failed to upgrade: %v", r.RemoteAddr, err)
		return
	}
	conn := newWebsocketConn(ws)
	select {
	case l.conns <- conn:
	case <-l.done:
		conn.Close()
	}
}

// Accept waits for the next upgraded connection.
func (l *WebsocketListener) Accept() (Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.done:
		return nil, ErrListenerClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.socket.Addr()
}

// Close stops the HTTP server. Connections already handed out stay open.
func (l *WebsocketListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.server.Close()
	})
	return err
}

type websocketConn struct {
	ws *websocket.Conn

	// Read state for the message being consumed.
	reader  io.Reader
	last    byte
	newline bool

	wmu       sync.Mutex
	closeOnce sync.Once
}

func newWebsocketConn(ws *websocket.Conn) *websocketConn {
	return &websocketConn{ws: ws}
}

// Read streams message payloads back to back, ending each with a newline if
// the sender didn't.
func (c *websocketConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if c.newline {
			c.newline = false
			p[0] = '\n'
			return 1, nil
		}
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					return 0, io.EOF
				}
				return 0, err
			}
			c.reader = r
			c.last = 0
		}

		n, err := c.reader.Read(p)
		if n > 0 {
			c.last = p[n-1]
		}
		if err == io.EOF {
			c.reader = nil
			c.newline = c.last != '\n'
			err = nil
		}
		if n > 0 || err != nil {
			return n, err
		}
	}
}

// Write sends p as a single text message.
func (c *websocketConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *websocketConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

// Close sends a close frame, best effort, and closes the connection.
func (c *websocketConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		err = c.ws.Close()
	})
	return err
}
