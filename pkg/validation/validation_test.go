package validation_test

import (
	"strings"
	"testing"

	"chatrelay/pkg/validation"

	"github.com/stretchr/testify/assert"
)

func TestValidateRoomID(t *testing.T) {
	tests := []struct {
		name    string
		roomID  string
		wantErr bool
	}{
		{"simple", "room1", false},
		{"with dash and underscore", "room_1-a", false},
		{"mixed case", "RoomOne", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"space inside", "room 1", true},
		{"slash", "room/1", true},
		{"unicode", "комната", true},
		{"max length", strings.Repeat("a", 64), false},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateRoomID(tt.roomID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
