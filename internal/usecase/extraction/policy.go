package extraction

import "fmt"

// FailurePolicy decides what a page-level render or recognition failure does to the document.
type FailurePolicy string

const (
	// PolicyDegrade keeps the page with whatever text is available and continues.
	PolicyDegrade FailurePolicy = "degrade"
	// PolicyFail aborts the whole document.
	PolicyFail FailurePolicy = "fail"
)

// ParsePolicy maps a config value to a FailurePolicy. Empty means PolicyDegrade.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyDegrade:
		return PolicyDegrade, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", s)
	}
}
