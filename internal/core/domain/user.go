package domain

// ConnID identifies one live transport connection. It is assigned by the
// server at connect time and is never reused for the lifetime of the process.
type ConnID string

// UserID is the client-supplied stable identity. It is not guaranteed to be
// globally unique: two connections may register the same id, and blocking is
// keyed off this value rather than the connection.
type UserID string

// UserProfile is the registered identity behind one live connection.
// At most one profile exists per connection; it is destroyed on disconnect.
type UserProfile struct {
	ID        UserID `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	TextColor string `json:"textColor,omitempty"`
	BgColor   string `json:"bgColor,omitempty"`
	ConnID    ConnID `json:"connectionId"`
}

const (
	// DefaultName is used when a register payload carries no display name.
	DefaultName = "anonymous"
	// DefaultIcon is the generic placeholder icon.
	DefaultIcon = "👤"
)
