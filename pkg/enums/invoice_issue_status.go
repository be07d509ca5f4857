package enums

import "fmt"

// InvoiceIssueStatus tracks triage state for donor-reported receipt problems.
type InvoiceIssueStatus string

const (
	InvoiceIssueStatusOpen       InvoiceIssueStatus = "open"
	InvoiceIssueStatusInProgress InvoiceIssueStatus = "in_progress"
	InvoiceIssueStatusResolved   InvoiceIssueStatus = "resolved"
)

var validInvoiceIssueStatuses = []InvoiceIssueStatus{
	InvoiceIssueStatusOpen,
	InvoiceIssueStatusInProgress,
	InvoiceIssueStatusResolved,
}

// String implements fmt.Stringer.
func (s InvoiceIssueStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvoiceIssueStatus.
func (s InvoiceIssueStatus) IsValid() bool {
	for _, candidate := range validInvoiceIssueStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvoiceIssueStatus converts raw input into an InvoiceIssueStatus.
func ParseInvoiceIssueStatus(value string) (InvoiceIssueStatus, error) {
	for _, candidate := range validInvoiceIssueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice issue status %q", value)
}
