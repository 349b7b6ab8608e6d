package check

// Report is a single finding produced by a rule that matched.
// Description may contain markdown (inline code, fenced blocks, links).
type Report struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// MaxSeverity returns the highest severity among reports, or None if there are none.
func MaxSeverity(reports []Report) Severity {
	highest := None
	for _, r := range reports {
		if r.Severity > highest {
			highest = r.Severity
		}
	}
	return highest
}
