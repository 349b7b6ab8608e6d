package check

import (
	"fmt"
	"strings"
)

// Severity is how actionable a finding is. Values are ordered: None < Medium < High.
type Severity int

const (
	// None marks an informational finding.
	None Severity = iota
	// Medium marks a finding that may be causing problems.
	Medium
	// High marks a finding that is very likely the cause of a failure.
	High
)

// Severities lists every severity in ascending order.
var Severities = []Severity{None, Medium, High}

// Color returns the 24-bit presentation color for the severity.
func (s Severity) Color() uint32 {
	switch s {
	case None:
		return 0x219ebc
	case Medium:
		return 0xf77f00
	case High:
		return 0xd62828
	}
	// Unreachable for declared severities; TestSeverity_ColorIsTotal guards new ones.
	return 0
}

// Hex returns the color as a "#rrggbb" string.
func (s Severity) Hex() string {
	return fmt.Sprintf("#%06x", s.Color())
}

// String returns "none", "medium" or "high".
func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity is the inverse of String. Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "info":
		return None, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return None, fmt.Errorf("unknown severity %q (want none, medium or high)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
