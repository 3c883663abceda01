package domain

import "time"

// LoginSession is minted after a successful authentication ceremony.
// Expiry and destruction belong to the session store.
type LoginSession struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
