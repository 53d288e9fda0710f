package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateConnectionID generates the server-assigned identifier for a new
// transport connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}

// GenerateMessageID generates a process-unique, time-derived message token.
func GenerateMessageID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("msg_%d_%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
