package models

import "time"

// Session binds an opaque server-issued token to a user. The token is the
// value held by the client in its cookie; nothing derived from credentials is
// stored here.
type Session struct {
	Token     string
	UserID    int64
	Expires   time.Time
	CreatedAt time.Time
}
