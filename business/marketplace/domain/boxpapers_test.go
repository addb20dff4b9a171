package domain

import (
	"testing"

	catalogDomain "watcharb/business/catalog/domain"
)

func TestDetectBoxPapers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want catalogDomain.BoxPapersStatus
	}{
		{"full_set_explicit", "Rolex Submariner 126610LN Full Set 2023", catalogDomain.BoxPapersFullSet},
		{"full_set_box_and_papers", "Omega Speedmaster with Box and Papers", catalogDomain.BoxPapersFullSet},
		{"full_set_abbreviation", "AP Royal Oak 15500ST B&P", catalogDomain.BoxPapersFullSet},
		{"full_set_case_insensitive", "COMPLETE SET Tudor Black Bay", catalogDomain.BoxPapersFullSet},
		{"papers_only", "Rolex Datejust papers only, no box", catalogDomain.BoxPapersPapersOnly},
		{"papers_with_card", "Cartier Santos card only", catalogDomain.BoxPapersPapersOnly},
		{"box_only", "Rolex GMT Master II box only", catalogDomain.BoxPapersBoxOnly},
		{"with_box", "Patek Philippe 5711 with box", catalogDomain.BoxPapersBoxOnly},
		// "no papers" alone implies the box survived, which matches the
		// dominant listing phrasing on eBay.
		{"no_papers_reads_as_box_only", "Omega Seamaster, no papers", catalogDomain.BoxPapersBoxOnly},
		{"watch_only", "Tudor Pelagos watch only", catalogDomain.BoxPapersNone},
		{"no_box_alone", "Rolex Explorer no box", catalogDomain.BoxPapersNone},
		{"nothing_matches", "Rolex Submariner 126610LN excellent condition", catalogDomain.BoxPapersUnknown},
		{"empty_text", "", catalogDomain.BoxPapersUnknown},
		// Priority: a full-set phrase wins over later group matches in the
		// same title.
		{"full_set_beats_box_only", "Full set! with box, with papers", catalogDomain.BoxPapersFullSet},
		{"papers_beats_box", "with papers and with box", catalogDomain.BoxPapersPapersOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBoxPapers(tt.text); got != tt.want {
				t.Errorf("DetectBoxPapers(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}
