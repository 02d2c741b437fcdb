// Package models defines the client-side data structures shared between the
// store, session, and view layers.
package models

import "time"

// Identity is a registered user's account record as seen by the client.
//
// The password credential never appears here: it is held and verified by the
// credential store only. Avatar holds raw PNG bytes and is nil when no avatar
// was provisioned for the account.
type Identity struct {
	ID        string
	Email     string
	Credits   int
	Avatar    []byte
	CreatedAt time.Time
}

// HasAvatar reports whether an avatar was attached at registration time.
func (i *Identity) HasAvatar() bool {
	return i != nil && len(i.Avatar) > 0
}

// Clone returns a deep copy so callers can hand identities across layer
// boundaries without sharing the avatar buffer.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Avatar != nil {
		c.Avatar = append([]byte(nil), i.Avatar...)
	}
	return &c
}
