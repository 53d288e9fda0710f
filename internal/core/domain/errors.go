package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrProfileNotFound = errors.New("profile not found")
)
