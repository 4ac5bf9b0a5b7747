package roomchat

import (
	"io"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
)

var logger *golog.Logger

// SetLogger sets the logger used by the host.
func SetLogger(l *golog.Logger) {
	logger = l
}

func init() {
	// Set a default null logger
	logger = golog.New(io.Discard, log.Debug)
}
