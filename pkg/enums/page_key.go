package enums

import "fmt"

// PageKey enumerates the public pages whose visibility admins can toggle.
// A closed enum, deliberately: string-keyed settings lookups are how typos
// turn into silently missing pages.
type PageKey string

const (
	PageKeyHome     PageKey = "home"
	PageKeyAbout    PageKey = "about"
	PageKeyPartners PageKey = "partners"
	PageKeyContact  PageKey = "contact"
	PageKeyDonate   PageKey = "donate"
)

var validPageKeys = []PageKey{
	PageKeyHome,
	PageKeyAbout,
	PageKeyPartners,
	PageKeyContact,
	PageKeyDonate,
}

// AllPageKeys returns every known page key in display order.
func AllPageKeys() []PageKey {
	out := make([]PageKey, len(validPageKeys))
	copy(out, validPageKeys)
	return out
}

// String implements fmt.Stringer.
func (p PageKey) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PageKey.
func (p PageKey) IsValid() bool {
	for _, candidate := range validPageKeys {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePageKey converts raw input into a PageKey.
func ParsePageKey(value string) (PageKey, error) {
	for _, candidate := range validPageKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid page key %q", value)
}
