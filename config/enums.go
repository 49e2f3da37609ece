package config

// Specification of requested note placement policy.
// ENUM(linked, inline, consolidated)
type NotePlacement int

// Relocates returns true when note bodies are physically moved out of their
// original location.
func (p NotePlacement) Relocates() bool {
	return p == NotePlacementInline || p == NotePlacementConsolidated
}

// Specification of note numbering presentation style.
// ENUM(numeral, roman, alpha)
type NumberingStyle int
