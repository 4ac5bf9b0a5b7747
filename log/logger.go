package log

import (
	"io"
	"os"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"

	roomchat "github.com/shazow/room-chat"
	"github.com/shazow/room-chat/chat"
	"github.com/shazow/room-chat/transport"
)

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

// Logger Global Logger
var Logger *golog.Logger

// SetLogger Set the global logger
func SetLogger(l *golog.Logger) {
	Logger = l
	roomchat.SetLogger(l)
}

// Level maps the number of -v flags to a log level.
func Level(numVerbose int) log.Level {
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}
	return logLevels[numVerbose]
}

// Init Initialize the global logger on stderr
func Init(numVerbose int) *golog.Logger {
	return InitWriter(os.Stderr, numVerbose)
}

// InitWriter initializes the global logger writing to w.
func InitWriter(w io.Writer, numVerbose int) *golog.Logger {
	logLevel := Level(numVerbose)
	SetLogger(golog.New(w, logLevel))

	if logLevel == log.Debug {
		// Enable logging from submodules
		chat.SetLogger(w)
		transport.SetLogger(w)
	}
	return Logger
}
