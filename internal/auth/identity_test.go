// ABOUTME: Tests for the Identity record
// ABOUTME: Covers role detection, expiry units, and JSON parsing

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIdentity_IsAdmin(t *testing.T) {
	if !(Identity{Username: "admin"}).IsAdmin() {
		t.Error("admin should be admin")
	}
	for _, name := range []string{"Admin", "administrator", "ada", ""} {
		if (Identity{Username: name}).IsAdmin() {
			t.Errorf("%q should not be admin", name)
		}
	}
}

func TestIdentity_ExpiresAtUnits(t *testing.T) {
	secs := Identity{Expiry: 1_700_000_000}
	if got := secs.ExpiresAt(); !got.Equal(time.Unix(1_700_000_000, 0)) {
		t.Errorf("seconds expiry = %v", got)
	}

	millis := Identity{Expiry: 1_700_000_000_123}
	if got := millis.ExpiresAt(); !got.Equal(time.UnixMilli(1_700_000_000_123)) {
		t.Errorf("millisecond expiry = %v", got)
	}

	if !(Identity{}).ExpiresAt().IsZero() {
		t.Error("zero expiry should give zero time")
	}
}

func TestIdentity_Expired(t *testing.T) {
	now := time.Unix(2_000_000_000, 0)

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"no expiry", Identity{Username: "ada"}, false},
		{"future", Identity{Username: "ada", Expiry: float64(now.Add(time.Hour).Unix())}, false},
		{"past", Identity{Username: "ada", Expiry: float64(now.Add(-time.Second).Unix())}, true},
		{"exactly now", Identity{Username: "ada", Expiry: float64(now.Unix())}, true},
		{"future millis", Identity{Username: "ada", Expiry: float64(now.Add(time.Minute).UnixMilli())}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	id, err := ParseIdentity([]byte(`{"username":"ada","expiry":1700000000}`))
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	if id.Username != "ada" || id.Expiry != 1_700_000_000 {
		t.Errorf("ParseIdentity() = %+v", id)
	}

	if _, err := ParseIdentity([]byte(`{"expiry":1}`)); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("missing username error = %v, want ErrMissingClaim", err)
	}

	if _, err := ParseIdentity([]byte(`"ada"`)); err == nil {
		t.Error("non-object identity should fail")
	}
}

func TestParseIdentity_NumberForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"integer seconds", `{"username":"ada","expiry":4102444800}`, time.Unix(4102444800, 0)},
		{"fractional seconds", `{"username":"ada","expiry":4102444800.5}`, time.Unix(4102444800, 500_000_000)},
		{"exponent seconds", `{"username":"ada","expiry":4.1024448e9}`, time.Unix(4102444800, 0)},
		{"exponent millis", `{"username":"ada","expiry":4.1024448e12}`, time.Unix(4102444800, 0)},
		{"fractional millis", `{"username":"ada","expiry":4102444800000.5}`, time.UnixMilli(4102444800000).Add(500 * time.Microsecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseIdentity([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseIdentity() error = %v", err)
			}
			if got := id.ExpiresAt(); !got.Equal(tt.want) {
				t.Errorf("ExpiresAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
