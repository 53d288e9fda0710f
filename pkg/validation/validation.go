package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// RoomIDRegex validates room ID format
var RoomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateRoomID validates a configured room identifier
func ValidateRoomID(roomID string) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return fmt.Errorf("room id is required")
	}
	if len(roomID) > 64 {
		return fmt.Errorf("room id is too long (max 64 characters)")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("room id contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}
