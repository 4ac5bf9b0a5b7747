package chat

import (
	"fmt"
	"strings"
)

// Newline terminates every line a room delivers.
const Newline = "\n"

// JoinMsg is the notice published when name enters a room.
func JoinMsg(name string) string {
	return fmt.Sprintf("%s has joined%s", name, Newline)
}

// LeaveMsg is the notice published when name leaves a room.
func LeaveMsg(name string) string {
	return fmt.Sprintf("%s has left%s", name, Newline)
}

// PublicMsg renders a line of chat from name. The body is expected to carry
// its own trailing newline; one is added if it doesn't.
func PublicMsg(name string, body string) string {
	if !strings.HasSuffix(body, Newline) {
		body += Newline
	}
	return fmt.Sprintf("%s: %s", name, body)
}

// IsBlank reports whether an input line carries nothing worth publishing.
func IsBlank(line string) bool {
	return line == "" || line == Newline || line == "\r"+Newline
}
