package enrich

import (
	"fmt"
	"strings"
)

// Method selects the statistical test applied to every term of a run.
type Method string

const (
	// FishersExact is the two-sided Fisher exact test, the default.
	FishersExact Method = "fishers_exact"
	// Hypergeometric is the one-sided hypergeometric tail P(X >= overlap).
	Hypergeometric Method = "hypergeometric"
	// ChiSquared is Pearson's chi-squared test with continuity correction.
	ChiSquared Method = "chi_squared"
)

// Methods returns the supported methods in display order.
func Methods() []Method {
	return []Method{FishersExact, Hypergeometric, ChiSquared}
}

// UnsupportedMethodError reports a method selector outside Methods(). It is
// raised once per run, before any term is scored.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	names := make([]string, 0, 3)
	for _, m := range Methods() {
		names = append(names, string(m))
	}
	return fmt.Sprintf("unsupported enrichment method %q (supported: %s)",
		e.Method, strings.Join(names, ", "))
}

// ParseMethod maps a selector string to a Method.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &UnsupportedMethodError{Method: s}
}
