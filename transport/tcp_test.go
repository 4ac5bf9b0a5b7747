package transport

import (
	"bufio"
	"net"
	"testing"
)

func TestTCPInit(t *testing.T) {
	_, err := ListenTCP(":badport")
	if err == nil {
		t.Fatal("should fail on bad port")
	}

	l, err := ListenTCP("localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Error(err)
	}
	if _, err := l.Accept(); err != ErrListenerClosed {
		t.Errorf("Got: %v; Expected: %v", err, ErrListenerClosed)
	}
}

func TestTCPEcho(t *testing.T) {
	l, err := ListenTCP("localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			t.Error(err)
			return
		}
		conn.Write([]byte("echo: " + line))
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.Write([]byte("hello\n"))

	actual, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if expected := "echo: hello\n"; actual != expected {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
}
