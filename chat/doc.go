/*
`chat` package is a transport-agnostic implementation of fixed, named chat
rooms, built to be the backend for room-chat.

This package should not know anything about sockets. Members are anything that
can take a rendered line of text; rooms queue lines and fan them out to every
current member from a single delivery goroutine per room.

	broker, err := chat.NewBroker("general", "random")
	if err != nil {
		// duplicate or empty room name
	}
	room, ok := broker.FindRoom("general")
	...
	room.Join(member)
	room.Publish(chat.PublicMsg(member.Name(), "hi\n"))

*/

package chat
