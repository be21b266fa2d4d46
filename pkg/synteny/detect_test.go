package synteny

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/ncgr/azulejo/logger"
	"github.com/ncgr/azulejo/pkg/homology"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(zapcore.WarnLevel); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// sharedFrames builds two genomes carrying the same three-cluster run on
// one scaffold each, plus a private run on the second genome.
func sharedFrames() map[string][]homology.Record {
	mk := func(scaffold string, ids []string, clusters []int) []homology.Record {
		records := make([]homology.Record, len(ids))
		for i := range ids {
			records[i] = homology.Record{
				ID:          ids[i],
				SeqID:       scaffold,
				ClusterID:   clusters[i],
				ClusterSize: 2,
			}
		}
		return records
	}
	return map[string][]homology.Record{
		"genomeA": mk("chr1", []string{"a1", "a2", "a3"}, []int{5, 7, 9}),
		"genomeB": append(
			mk("chr2", []string{"b1", "b2", "b3"}, []int{9, 7, 5}),
			mk("chr3", []string{"b4", "b5", "b6"}, []int{11, 13, 15})...),
	}
}

func TestDetectSharedAnchor(t *testing.T) {
	result, err := Detect(context.Background(), sharedFrames(), Params{K: 3})
	if err != nil {
		t.Fatal(err)
	}

	// The shared run appears once per genome (reversed on genomeB) and
	// canonicalization makes the hashes match.
	a1 := result.Frames["genomeA"][0]
	b1 := result.Frames["genomeB"][0]
	if a1.SyntenyID == 0 || a1.SyntenyID != b1.SyntenyID {
		t.Fatalf("shared anchor hashes differ: %d vs %d", a1.SyntenyID, b1.SyntenyID)
	}
	if result.Anchors[a1.SyntenyID] != 2 {
		t.Errorf("shared anchor count = %d, want 2", result.Anchors[a1.SyntenyID])
	}
	if a1.SyntenyCount != 2 || b1.SyntenyCount != 2 {
		t.Errorf("row synteny counts = %d, %d; want 2", a1.SyntenyCount, b1.SyntenyCount)
	}

	// The private run on chr3 stays at occurrence count 1.
	b4 := result.Frames["genomeB"][3]
	if b4.SyntenyID == 0 {
		t.Fatal("private window should still be hashed")
	}
	if result.Anchors[b4.SyntenyID] != 1 {
		t.Errorf("private anchor count = %d, want 1", result.Anchors[b4.SyntenyID])
	}

	informative := result.InformativeAnchors()
	if len(informative) != 1 || informative[0] != a1.SyntenyID {
		t.Errorf("informative anchors = %v", informative)
	}
}

func TestDetectWindowAnnotations(t *testing.T) {
	result, err := Detect(context.Background(), sharedFrames(), Params{K: 3})
	if err != nil {
		t.Fatal(err)
	}
	records := result.Frames["genomeA"]
	// Only index 0 fits a full window on a 3-locus scaffold.
	if records[0].Footprint != 3 || records[0].HashDir == 0 {
		t.Errorf("first row annotation = %+v", records[0])
	}
	for _, r := range records[1:] {
		if r.Footprint != 0 || r.HashDir != 0 || r.SyntenyID != 0 || r.SelfCount != 0 {
			t.Errorf("trailing row should be unannotated: %+v", r)
		}
	}
	if records[0].SelfCount != 1 {
		t.Errorf("self count = %d, want 1", records[0].SelfCount)
	}
}

func TestDetectScaffoldIndependence(t *testing.T) {
	// Windows must not cross scaffold boundaries even when the combined
	// table would allow one.
	frames := map[string][]homology.Record{
		"genomeA": {
			{ID: "g1", SeqID: "chr1", ClusterID: 5, ClusterSize: 2},
			{ID: "g2", SeqID: "chr1", ClusterID: 7, ClusterSize: 2},
			{ID: "g3", SeqID: "chr2", ClusterID: 9, ClusterSize: 2},
		},
	}
	result, err := Detect(context.Background(), frames, Params{K: 3})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range result.Frames["genomeA"] {
		if r.SyntenyID != 0 {
			t.Errorf("window crossed scaffold boundary: %+v", r)
		}
	}
}

func TestWriteAnchorTable(t *testing.T) {
	result, err := Detect(context.Background(), sharedFrames(), Params{K: 3})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "anchors.tsv")
	if err := result.WriteAnchorTable(path); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if lines[0] != "hash\tcount" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("expected 2 anchor rows, got %d", len(lines)-1)
	}
	if !strings.HasSuffix(lines[1], "\t2") || !strings.HasSuffix(lines[2], "\t1") {
		t.Errorf("rows not sorted by count: %v", lines[1:])
	}
}
