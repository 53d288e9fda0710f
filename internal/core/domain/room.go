package domain

// RoomID names one of the statically configured chat rooms. The room set is
// fixed at startup and never changes for the process lifetime.
type RoomID string

// RoomInfo is the read-only room summary exposed over the HTTP API.
type RoomInfo struct {
	ID      RoomID `json:"id"`
	Members int    `json:"members"`
}
