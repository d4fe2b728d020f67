// ABOUTME: Identity record returned by the auth backend for a validated session
// ABOUTME: Carries the username role discriminant and the session expiry

package auth

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// AdminUsername is the only role discriminant: this user gets the database console.
const AdminUsername = "admin"

// millisThreshold separates unix-seconds from unix-milliseconds expiry values.
const millisThreshold = 1_000_000_000_000

// Identity is the validated user record {username, expiry}. Expiry is any JSON
// number, so fractional and exponent forms decode.
type Identity struct {
	Username string  `json:"username"`
	Expiry   float64 `json:"expiry"`
}

// IsAdmin reports whether this identity gets the admin view.
func (i Identity) IsAdmin() bool {
	return i.Username == AdminUsername
}

// ExpiresAt converts Expiry to a time. A zero Expiry yields the zero time.
func (i Identity) ExpiresAt() time.Time {
	if i.Expiry == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(i.Expiry)
	if i.Expiry >= millisThreshold {
		return time.UnixMilli(int64(whole)).Add(time.Duration(frac * float64(time.Millisecond)))
	}
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}

// Expired reports whether a non-zero expiry lies before now.
func (i Identity) Expired(now time.Time) bool {
	if i.Expiry == 0 {
		return false
	}
	return !now.Before(i.ExpiresAt())
}

// ParseIdentity decodes a JSON identity and checks it carries a username.
func ParseIdentity(raw []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Identity{}, fmt.Errorf("decoding identity: %w", err)
	}
	if id.Username == "" {
		return Identity{}, fmt.Errorf("%w: username", ErrMissingClaim)
	}
	return id, nil
}
