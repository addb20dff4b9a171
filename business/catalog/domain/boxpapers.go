// Package domain contains the core domain types for the watch catalog context.
package domain

// BoxPapersStatus classifies how complete a listing is with respect to
// original packaging and documentation.
type BoxPapersStatus string

const (
	BoxPapersFullSet    BoxPapersStatus = "full_set"
	BoxPapersPapersOnly BoxPapersStatus = "papers_only"
	BoxPapersBoxOnly    BoxPapersStatus = "box_only"
	BoxPapersNone       BoxPapersStatus = "none"
	BoxPapersUnknown    BoxPapersStatus = "unknown"
)

// Known reports whether the status carries actual completeness information.
func (s BoxPapersStatus) Known() bool {
	return s != BoxPapersUnknown && s != ""
}

// Valid reports whether s is one of the five enumerated tiers.
func (s BoxPapersStatus) Valid() bool {
	switch s {
	case BoxPapersFullSet, BoxPapersPapersOnly, BoxPapersBoxOnly, BoxPapersNone, BoxPapersUnknown:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of the status.
func (s BoxPapersStatus) String() string {
	switch s {
	case BoxPapersFullSet:
		return "Full Set"
	case BoxPapersPapersOnly:
		return "Papers Only"
	case BoxPapersBoxOnly:
		return "Box Only"
	case BoxPapersNone:
		return "Watch Only"
	default:
		return "Unknown"
	}
}
