package transport

import (
	"bufio"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebsocketLines(t *testing.T) {
	l, err := ListenWebsocket("localhost:0", "/chat")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	lines := make(chan string, 3)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for i := 0; i < 3; i++ {
			line, err := r.ReadString('\n')
			if err != nil {
				t.Error(err)
				return
			}
			lines <- line
		}
		conn.Write([]byte("done\n"))
	}()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr().String()+"/chat", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	ws.WriteMessage(websocket.TextMessage, []byte("no newline"))
	ws.WriteMessage(websocket.TextMessage, []byte("with newline\n"))
	ws.WriteMessage(websocket.TextMessage, []byte(""))

	for _, expected := range []string{"no newline\n", "with newline\n", "\n"} {
		if actual := <-lines; actual != expected {
			t.Errorf("Got: %q; Expected: %q", actual, expected)
		}
	}

	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if actual, expected := string(msg), "done\n"; actual != expected {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
}

func TestWebsocketClosed(t *testing.T) {
	l, err := ListenWebsocket("localhost:0", "/")
	if err != nil {
		t.Fatal(err)
	}
	l.Close()
	if _, err := l.Accept(); err != ErrListenerClosed {
		t.Errorf("Got: %v; Expected: %v", err, ErrListenerClosed)
	}
}
