package domain

import (
	"strings"

	catalogDomain "watcharb/business/catalog/domain"
)

var fullSetPatterns = []string{
	"full set", "box and papers", "box & papers", "b&p",
	"complete set", "with box and papers", "w/ box papers",
}

var papersOnlyPatterns = []string{
	"papers only", "with papers", "w/ papers", "card only",
}

var boxOnlyPatterns = []string{
	"box only", "with box", "w/ box",
}

var nonePatterns = []string{
	"no box", "no papers", "watch only", "naked",
}

// DetectBoxPapers classifies a listing's box/papers completeness from free
// text. Pattern groups are checked in priority order, first hit wins; text
// that matches nothing is classified unknown, never guessed.
func DetectBoxPapers(text string) catalogDomain.BoxPapersStatus {
	text = strings.ToLower(text)

	for _, p := range fullSetPatterns {
		if strings.Contains(text, p) {
			return catalogDomain.BoxPapersFullSet
		}
	}

	for _, p := range papersOnlyPatterns {
		if strings.Contains(text, p) {
			return catalogDomain.BoxPapersPapersOnly
		}
	}

	noPapers := strings.Contains(text, "no papers") || strings.Contains(text, "without papers")
	for _, p := range boxOnlyPatterns {
		if strings.Contains(text, p) || noPapers {
			return catalogDomain.BoxPapersBoxOnly
		}
	}

	for _, p := range nonePatterns {
		if strings.Contains(text, p) {
			return catalogDomain.BoxPapersNone
		}
	}

	return catalogDomain.BoxPapersUnknown
}
