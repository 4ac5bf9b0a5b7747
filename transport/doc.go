/*
Package transport adapts network listeners into streams of connections for the
chat host. It knows nothing about chat: a Conn is a bidirectional byte stream
carrying newline-terminated lines.

Three adapters are provided: raw TCP, SSH (golang.org/x/crypto/ssh) and
WebSocket (github.com/gorilla/websocket).
*/
package transport
