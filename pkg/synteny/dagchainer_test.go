package synteny

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ncgr/azulejo/pkg/homology"
)

func TestParseDagchainerID(t *testing.T) {
	val, err := ParseDagchainerID("cl12")
	if err != nil || val != 12 {
		t.Fatalf("cl12 -> %d, %v", val, err)
	}
	if _, err := ParseDagchainerID("x12"); err == nil {
		t.Error("expected error for missing cl prefix")
	}
	if _, err := ParseDagchainerID("clabc"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestAttachDagchainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusters.tsv")
	content := "cl1\tg1\ncl1\tg2\ncl2\tg3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	assignments, counts, err := ReadDagchainer(path)
	if err != nil {
		t.Fatal(err)
	}
	if assignments["g1"] != 1 || counts[1] != 2 || counts[2] != 1 {
		t.Fatalf("assignments=%v counts=%v", assignments, counts)
	}

	frames := map[string][]homology.Record{
		"genomeA": {
			{ID: "g1"},
			{ID: "g3"},
			{ID: "unmapped"},
		},
	}
	AttachDagchainer(frames, assignments, counts)
	records := frames["genomeA"]
	if records[0].SyntenyID != 1 || records[0].SyntenyCount != 2 {
		t.Errorf("g1 = %+v", records[0])
	}
	if records[1].SyntenyID != 2 || records[1].SyntenyCount != 1 {
		t.Errorf("g3 = %+v", records[1])
	}
	// A lookup miss defaults to unassigned rather than failing.
	if records[2].SyntenyID != 0 || records[2].SyntenyCount != 0 {
		t.Errorf("unmapped = %+v", records[2])
	}
}
