package transport

import (
	"bufio"
	"io"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestServerInit(t *testing.T) {
	config := MakeNoAuth()
	_, err := ListenSSH(":badport", config)
	if err == nil {
		t.Fatal("should fail on bad port")
	}

	s, err := ListenSSH("localhost:0", config)
	if err != nil {
		t.Fatal(err)
	}

	err = s.Close()
	if err != nil {
		t.Error(err)
	}
	if _, err := s.Accept(); err != ErrListenerClosed {
		t.Errorf("Got: %v; Expected: %v", err, ErrListenerClosed)
	}
}

func TestServeShell(t *testing.T) {
	signer, err := NewRandomSigner(1024)
	if err != nil {
		t.Fatal(err)
	}
	config := MakeNoAuth()
	config.AddHostKey(signer)

	s, err := ListenSSH("localhost:0", config)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	go func() {
		// Accept one connection, read a line from it, echo back, close.
		conn, err := s.Accept()
		if err != nil {
			t.Error(err)
			return
		}
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			t.Error(err)
		}
		_, err = conn.Write([]byte("echo: " + line))
		if err != nil {
			t.Error(err)
		}
		conn.Close()
	}()

	err = ConnectShell(s.Addr().String(), "foo", func(r io.Reader, w io.WriteCloser) error {
		w.Write([]byte("hello\n"))

		actual, err := bufio.NewReader(r).ReadString('\n')
		if err != nil {
			return err
		}
		if expected := "echo: hello\n"; actual != expected {
			t.Errorf("Got: %q; Expected: %q", actual, expected)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRejectExtraChannels(t *testing.T) {
	signer, err := NewRandomSigner(1024)
	if err != nil {
		t.Fatal(err)
	}
	config := MakeNoAuth()
	config.AddHostKey(signer)

	s, err := ListenSSH("localhost:0", config)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	go s.Accept()

	conn, err := ssh.Dial("tcp", s.Addr().String(), NewClientConfig("foo"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, _, err = conn.OpenChannel("direct-tcpip", nil)
	if err == nil {
		t.Error("non-session channel should be rejected")
	}
}
