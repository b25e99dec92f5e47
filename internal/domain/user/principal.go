package user

import "time"

// Principal identifies the authenticated caller of a protected endpoint.
type Principal struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
