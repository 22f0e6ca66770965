package model

import "time"

// TokenRecord is a ledger entry for an issued non-access token. Its presence
// is what keeps a refresh/reset/verify token live: deleting the record
// invalidates the token even before its embedded expiry elapses.
type TokenRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
