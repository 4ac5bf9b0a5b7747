package roomchat

import (
	"net"
	"testing"
	"time"

	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/transport"
)

func TestShutdown(t *testing.T) {
	broker, err := chat.NewBroker("general", "random")
	if err != nil {
		t.Fatal(err)
	}
	l, err := transport.ListenTCP("localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	host := NewHost(broker)
	served := make(chan error, 1)
	go func() {
		served <- host.Serve(l)
	}()

	a := dial(t, l.Addr().String())
	a.register("A", "general", "general:\n", "random:\n")
	a.expect("A has joined\n")

	if err := Shutdown(broker, time.Second, l); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}

	if _, err := net.DialTimeout("tcp", l.Addr().String(), 100*time.Millisecond); err == nil {
		t.Error("listener still accepting after shutdown")
	}

	general, _ := broker.FindRoom("general")
	if err := general.Publish("late\n"); err != chat.ErrRoomClosed {
		t.Errorf("Got: %v; Expected: %v", err, chat.ErrRoomClosed)
	}
	if general.Len() != 0 {
		t.Errorf("membership not released: %d", general.Len())
	}
}
