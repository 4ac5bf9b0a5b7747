package roomchat

import (
	"bufio"
	"io"
	"testing"
	"time"

	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/transport"
)

func TestHostSSH(t *testing.T) {
	key, err := transport.NewRandomSigner(1024)
	if err != nil {
		t.Fatal(err)
	}
	config := transport.MakeNoAuth()
	config.AddHostKey(key)

	s, err := transport.ListenSSH("localhost:0", config)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	broker, err := chat.NewBroker("general")
	if err != nil {
		t.Fatal(err)
	}
	defer broker.Close(time.Second)
	go NewHost(broker).Serve(s)

	err = transport.ConnectShell(s.Addr().String(), "foo", func(r io.Reader, w io.WriteCloser) error {
		scanner := bufio.NewScanner(r)
		expect := func(lines ...string) {
			for _, expected := range lines {
				if !scanner.Scan() {
					t.Fatalf("Expected %q; Got: %v", expected, scanner.Err())
				}
				if actual := scanner.Text(); actual != expected {
					t.Errorf("Got: %q; Expected: %q", actual, expected)
				}
			}
		}

		expect("Chat Rooms:", "", "general:", "", "Enter your chat name (no spaces):")
		w.Write([]byte("A\n"))
		expect("Enter chat room:")
		w.Write([]byte("general\n"))
		expect("A has joined")
		w.Write([]byte("over ssh\n"))
		expect("A: over ssh")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
