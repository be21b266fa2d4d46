package ident

import (
	"reflect"
	"testing"
)

func TestParseChromosome(t *testing.T) {
	chromosome, ok := ParseChromosome("MtrunA17_Chr4g0009691")
	if !ok || chromosome != "Chr4" {
		t.Fatalf("expected Chr4, got %q ok=%v", chromosome, ok)
	}

	// Underscore-free fields are used as-is; a lowercase 'g' is not a
	// chromosome marker.
	if _, ok := ParseChromosome("Chr4g0009691"); ok {
		t.Errorf("lowercase g should not parse as a chromosome")
	}

	chromosome, ok = ParseChromosome("glyma_CHR07G001100")
	if !ok || chromosome != "Chr7" {
		t.Errorf("expected Chr7, got %q ok=%v", chromosome, ok)
	}

	if _, ok := ParseChromosome("scaffold_0012"); ok {
		t.Errorf("scaffold id should not parse as a chromosome")
	}
	if _, ok := ParseChromosome("GmISU01"); ok {
		t.Errorf("no digits before G should not parse")
	}
}

func TestParseSubIDs(t *testing.T) {
	subids := ParseSubIDs("medtr.MtrunA17_Chr4g0009691.v2")
	want := []string{"medtr", "MtrunA17_Chr4g0009691", "v2", "Chr4"}
	if !reflect.DeepEqual(subids, want) {
		t.Fatalf("got %v, want %v", subids, want)
	}

	subids = ParseSubIDs("plain")
	if !reflect.DeepEqual(subids, []string{"plain"}) {
		t.Fatalf("got %v, want [plain]", subids)
	}
}
