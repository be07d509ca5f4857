package enums

import "fmt"

// RecipientGroup selects the audience of a mailing campaign.
type RecipientGroup string

const (
	RecipientGroupAll    RecipientGroup = "all"
	RecipientGroupDonors RecipientGroup = "donors"
)

var validRecipientGroups = []RecipientGroup{
	RecipientGroupAll,
	RecipientGroupDonors,
}

// String implements fmt.Stringer.
func (r RecipientGroup) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecipientGroup.
func (r RecipientGroup) IsValid() bool {
	for _, candidate := range validRecipientGroups {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecipientGroup converts raw input into a RecipientGroup.
func ParseRecipientGroup(value string) (RecipientGroup, error) {
	for _, candidate := range validRecipientGroups {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recipient group %q", value)
}
