package services

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// DefaultRoom is the room messages go to when it exists
const DefaultRoom = "general"

// Room is a chat room
type Room struct {
	ID   string
	Name string
}

// RoomList is the response of GET /api/v1/rooms
type RoomList struct {
	*apiclient.Result
	Rooms []Room
}

// Pick returns the room named name, else the first room; ok is false when
// there are no rooms.
func (l *RoomList) Pick(name string) (Room, bool) {
	if len(l.Rooms) == 0 {
		return Room{}, false
	}
	for _, r := range l.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return l.Rooms[0], true
}

// MessageRequest is the body of POST /api/v1/rooms/{id}/messages
type MessageRequest struct {
	Content    string `json:"content"`
	Sender     string `json:"sender"`
	SenderType string `json:"sender_type,omitempty"`
}

// Message is a posted chat message
type Message struct {
	*apiclient.Result
	ID      string
	Content string
}

// Chat wraps the local agent chat service
type Chat struct {
	client *apiclient.Client
}

// NewChat creates a Chat wrapper
func NewChat(c *apiclient.Client) *Chat {
	return &Chat{client: c}
}

// ListRooms lists rooms. A response that is not a JSON array yields no rooms.
func (c *Chat) ListRooms(ctx context.Context) (*RoomList, error) {
	result, err := c.client.Get(ctx, apiPrefix+"/rooms")
	if err != nil {
		return nil, err
	}
	l := &RoomList{Result: result}
	if result.IsError || !result.IsArray() {
		return l, nil
	}
	result.Get("@this").ForEach(func(_, room gjson.Result) bool {
		id := room.Get("id")
		if !id.Exists() || id.Type == gjson.Null {
			return true
		}
		l.Rooms = append(l.Rooms, Room{ID: id.String(), Name: room.Get("name").String()})
		return true
	})
	return l, nil
}

// PostMessage sends a message to a room
func (c *Chat) PostMessage(ctx context.Context, roomID string, req MessageRequest) (*Message, error) {
	result, err := c.client.Post(ctx, apiPrefix+"/rooms/"+segment(roomID)+"/messages", req, nil)
	if err != nil {
		return nil, err
	}
	m := &Message{Result: result}
	if !result.IsError {
		m.ID = result.String("id")
		m.Content = result.String("content")
	}
	return m, nil
}
