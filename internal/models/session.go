package models

import "time"

// Session is a server-side login session. The token is the bearer credential
// handed to the client; everything else stays on the server.
type Session struct {
	Token     string    `gorm:"primarykey;type:varchar(64)" json:"-"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Expiry    time.Time `gorm:"not null;index" json:"expiry"`
	Data      string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionData is serialized into Session.Data.
type SessionData struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expiry)
}
