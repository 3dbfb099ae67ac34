package domain

import "errors"

type RoomCode string

// RoomState is the match lifecycle. There is no transition out of Ended.
type RoomState string

const (
	StateWaiting RoomState = "waiting"
	StatePlaying RoomState = "playing"
	StateEnded   RoomState = "ended"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomClosed   = errors.New("room is closed")
	ErrSessionBound = errors.New("session already bound to a room")
)
