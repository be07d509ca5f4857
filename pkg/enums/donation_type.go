package enums

import "fmt"

// DonationType distinguishes personal gifts from corporate ones.
type DonationType string

const (
	DonationTypePersonal DonationType = "personal"
	DonationTypeCompany  DonationType = "company"
)

var validDonationTypes = []DonationType{
	DonationTypePersonal,
	DonationTypeCompany,
}

// String implements fmt.Stringer.
func (d DonationType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationType.
func (d DonationType) IsValid() bool {
	for _, candidate := range validDonationTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDonationType converts raw input into a DonationType.
func ParseDonationType(value string) (DonationType, error) {
	for _, candidate := range validDonationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation type %q", value)
}
