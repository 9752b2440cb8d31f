package wmediumd

//
// Radio addresses
//

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressSize is the number of bytes in an [Address].
const AddressSize = 6

// Address is a 6-byte hardware address identifying one radio. Addresses are
// value types: compare and pass them by value, never by pointer, so that
// equality is always by content (spec design note "address as value, not
// pointer").
type Address [AddressSize]byte

// BroadcastAddress is the all-ones 802.11 broadcast address.
var BroadcastAddress = Address{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// String formats the address in the usual colon-separated hex form.
func (a Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// IsZero returns true for the zero-value address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// ErrAddressSyntax indicates that a textual address could not be parsed.
var ErrAddressSyntax = errors.New("wmediumd: invalid MAC address syntax")

// ParseAddress parses the canonical "42:00:00:00:01:00" textual form used by
// configuration files. This parsing/formatting concern is explicitly listed
// as an external collaborator by the core specification; it lives here, in
// its own small file, rather than inside the pipeline itself.
func ParseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(s, ":")
	if len(parts) != AddressSize {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressSyntax, s)
	}
	for i, part := range parts {
		if len(part) != 2 {
			return Address{}, fmt.Errorf("%w: %q", ErrAddressSyntax, s)
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %q", ErrAddressSyntax, s)
		}
		a[i] = b[0]
	}
	return a, nil
}
