package roomchat

import (
	"time"

	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/transport"
)

// Shutdown stops accepting new connections on every listener, then stops
// every room of the broker, waiting up to timeout for each. Connected clients
// are not notified and anything still queued is dropped. Errors are collected
// and reported together; none of them stop the rest of the teardown.
func Shutdown(broker *chat.Broker, timeout time.Duration, listeners ...transport.Listener) error {
	errs := transport.MultiError{}
	for _, l := range listeners {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := broker.Close(timeout); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
