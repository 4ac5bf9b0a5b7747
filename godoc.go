/*
Package roomchat is an implementation of a line-oriented chat server with a
fixed set of named rooms.

transport subdirectory contains the network pieces (TCP, SSH, WebSocket) which
know nothing about chat.

chat subdirectory contains the rooms and the broker which know nothing about
sockets.

The Host type is the glue between the transport and chat pieces: it runs one
session per connection.
*/
package roomchat
