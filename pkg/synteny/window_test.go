package synteny

import (
	"testing"

	"github.com/ncgr/azulejo/pkg/homology"
)

func loci(pairs ...[2]int) []homology.Record {
	records := make([]homology.Record, len(pairs))
	for i, pair := range pairs {
		records[i] = homology.Record{ClusterID: pair[0], ClusterSize: pair[1]}
	}
	return records
}

func TestKmerWindowCanonicalSymmetry(t *testing.T) {
	forward := loci([2]int{5, 2}, [2]int{7, 3}, [2]int{9, 2})
	backward := loci([2]int{9, 2}, [2]int{7, 3}, [2]int{5, 2})

	wf := KmerWindow(forward, 0, 3)
	wb := KmerWindow(backward, 0, 3)
	if wf.Hash == 0 || wb.Hash == 0 {
		t.Fatal("windows unexpectedly undefined")
	}
	if wf.Hash != wb.Hash {
		t.Fatalf("hash not orientation-independent: %d vs %d", wf.Hash, wb.Hash)
	}
	// Exactly one orientation is canonical; the two reads disagree on
	// direction.
	if wf.Direction == wb.Direction {
		t.Errorf("both orientations report direction %d", wf.Direction)
	}
	if wf.Span != 3 || wb.Span != 3 {
		t.Errorf("spans = %d, %d; want 3", wf.Span, wb.Span)
	}
}

func TestKmerWindowPalindromeDirection(t *testing.T) {
	w := KmerWindow(loci([2]int{4, 2}, [2]int{8, 2}, [2]int{4, 2}), 0, 3)
	if w.Hash == 0 {
		t.Fatal("palindromic window should be defined")
	}
	if w.Direction != -1 {
		t.Errorf("palindrome direction = %d, want -1", w.Direction)
	}
}

func TestKmerWindowUndefined(t *testing.T) {
	// A singleton cluster inside the window poisons it regardless of
	// hash values.
	withSingleton := loci([2]int{5, 3}, [2]int{5, 1}, [2]int{7, 3})
	if w := KmerWindow(withSingleton, 0, 3); w != (Window{}) {
		t.Errorf("singleton window = %+v, want zero", w)
	}

	// Running past the scaffold end is undefined too.
	short := loci([2]int{5, 3}, [2]int{7, 3})
	if w := KmerWindow(short, 0, 3); w != (Window{}) {
		t.Errorf("overrun window = %+v, want zero", w)
	}
	if w := KmerWindow(short, 1, 2); w != (Window{}) {
		t.Errorf("overrun window at index 1 = %+v, want zero", w)
	}
}

func TestRmerWindowCollapsesRepeats(t *testing.T) {
	// Three raw repeats of cluster 5 collapse to one token.
	repeated := loci(
		[2]int{5, 4}, [2]int{5, 4}, [2]int{5, 4},
		[2]int{7, 2}, [2]int{9, 2},
	)
	w := RmerWindow(repeated, 0, 3)
	if w.Hash == 0 {
		t.Fatal("window unexpectedly undefined")
	}
	if w.Span != 5 {
		t.Errorf("span = %d, want 5 raw loci", w.Span)
	}

	// The collapsed window hashes identically to the unrepeated run.
	plain := loci([2]int{5, 4}, [2]int{7, 2}, [2]int{9, 2})
	if pw := KmerWindow(plain, 0, 3); pw.Hash != w.Hash {
		t.Errorf("collapsed hash %d != plain hash %d", w.Hash, pw.Hash)
	}
}

func TestRmerWindowUndefined(t *testing.T) {
	// Scaffold ends before k distinct tokens are collected.
	records := loci([2]int{5, 4}, [2]int{5, 4}, [2]int{7, 2})
	if w := RmerWindow(records, 0, 3); w != (Window{}) {
		t.Errorf("window = %+v, want zero", w)
	}

	// A singleton encountered mid-walk is undefined.
	withSingleton := loci([2]int{5, 4}, [2]int{6, 1}, [2]int{7, 2}, [2]int{8, 2})
	if w := RmerWindow(withSingleton, 0, 3); w != (Window{}) {
		t.Errorf("window = %+v, want zero", w)
	}
}

func TestBlockName(t *testing.T) {
	if name := BlockName(6, false); name != "kmer6" {
		t.Errorf("got %q", name)
	}
	if name := BlockName(4, true); name != "rmer4" {
		t.Errorf("got %q", name)
	}
}
