package chat

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestBrokerDuplicate(t *testing.T) {
	_, err := NewBroker("general", "random", "general")
	if !errors.Is(err, ErrDuplicateRoom) {
		t.Errorf("Got: %v; Expected: %v", err, ErrDuplicateRoom)
	}

	_, err = NewBroker("general", "")
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("Got: %v; Expected: %v", err, ErrInvalidName)
	}
}

func TestBrokerFindRoom(t *testing.T) {
	b, err := NewBroker("general", "random")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(time.Second)

	room, ok := b.FindRoom("general")
	if !ok || room.Name() != "general" {
		t.Errorf("general not found: %v", room)
	}
	if _, ok := b.FindRoom("General"); ok {
		t.Error("lookup should be case-sensitive")
	}
	if _, ok := b.FindRoom("nope"); ok {
		t.Error("found a room that doesn't exist")
	}
}

func TestBrokerList(t *testing.T) {
	b, err := NewBroker("random", "general", "art")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(time.Second)

	general, _ := b.FindRoom("general")
	general.Join(NewMockMember("A"))
	general.Join(NewMockMember("B"))

	actual := b.List()
	expected := []Listing{
		{Name: "art", Members: []string{}},
		{Name: "general", Members: []string{"A", "B"}},
		{Name: "random", Members: []string{}},
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Got: %v; Expected: %v", actual, expected)
	}
}

func TestBrokerIsolation(t *testing.T) {
	b, err := NewBroker("general", "random")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(time.Second)

	general, _ := b.FindRoom("general")
	random, _ := b.FindRoom("random")
	a := NewMockMember("A")
	c := NewMockMember("C")
	general.Join(a)
	random.Join(c)

	general.Publish(JoinMsg("A"))
	general.Publish(PublicMsg("A", "hi\n"))
	random.Publish(PublicMsg("C", "elsewhere\n"))

	expect(t, a, "A has joined\n", "A: hi\n")
	expect(t, c, "C: elsewhere\n")
	expectNothing(t, a)
	expectNothing(t, c)
}

func TestBrokerClose(t *testing.T) {
	b, err := NewBroker("general", "random")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Close(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(time.Second); err != nil {
		t.Errorf("second Close: %v", err)
	}
	for _, room := range b.Rooms() {
		if err := room.Publish("late\n"); err != ErrRoomClosed {
			t.Errorf("%s: Got: %v; Expected: %v", room.Name(), err, ErrRoomClosed)
		}
	}
}
