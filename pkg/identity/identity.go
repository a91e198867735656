// Package identity exposes the cached operator identity.
//
// The profile is written by the external auth collaborator after login; this
// client treats it as read-only shared state. The gateway consults it on
// every outbound call to decide whether to attach the x-username header, and
// checkout uses the shop block to assemble the receipt header.
//
// Absence of a profile is never an error: requests simply go out without the
// header and the server decides authorization.
package identity

import (
	"fmt"

	"github.com/dukaanlabs/dukaan/pkg/cache"
)

const cacheKey = "dukaan:identity"

// Profile is the cached operator identity plus the shop details printed on
// receipts.
type Profile struct {
	Username      string `json:"username"`
	ShopName      string `json:"shopName"`
	FullAddress   string `json:"fullAddress"`
	ContactNumber string `json:"contactNumber"`
	Pincode       string `json:"pincode"`
}

// Source yields the current profile, if any. The gateway and the billing
// session take a Source so tests can inject one without Redis.
type Source interface {
	Profile() (Profile, bool)
}

// ── Cache-backed source (production) ─────────────────────────────────────────

// Cached reads the profile from the shared Redis cache on every call, so a
// re-login by the collaborator is picked up without restarting the POS.
type Cached struct{}

func (Cached) Profile() (Profile, bool) {
	var p Profile
	if !cache.Get(cacheKey, &p) {
		return Profile{}, false
	}
	if p.Username == "" {
		return Profile{}, false
	}
	return p, true
}

// ── Static source (tests, CLI overrides) ─────────────────────────────────────

// Static is a fixed in-memory profile.
type Static struct {
	P  Profile
	Ok bool
}

func (s Static) Profile() (Profile, bool) { return s.P, s.Ok }

// None is a Source with no profile at all.
var None = Static{}

// ── Collaborator surface ─────────────────────────────────────────────────────

// Save writes the profile into the shared cache. This is the seam the auth
// collaborator (and the `dukaan identity use` command) writes through.
func Save(p Profile) error {
	if p.Username == "" {
		return fmt.Errorf("identity: username is required")
	}
	return cache.Set(cacheKey, p, 0)
}

// Clear removes the cached profile (logout).
func Clear() error {
	return cache.Del(cacheKey)
}
