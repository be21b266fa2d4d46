package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ncgr/azulejo/pkg/homology"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "gene_table.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRegisterRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.RegisterRun(ctx, "", "proxy", "all-nr-8700", "k=6")
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("expected a generated run ID")
	}

	explicit, err := store.RegisterRun(ctx, "run-123", "cluster", "all-nr-8700", "")
	if err != nil {
		t.Fatal(err)
	}
	if explicit != "run-123" {
		t.Errorf("run ID = %q, want run-123", explicit)
	}

	// Run IDs are primary keys; reuse is rejected.
	if _, err := store.RegisterRun(ctx, "run-123", "cluster", "all-nr-8700", ""); err == nil {
		t.Error("expected duplicate run ID to fail")
	}
}

func TestLoadAndQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sizes := map[int]int{3: 2, 8: 1}
	if err := store.LoadClusters(ctx, sizes); err != nil {
		t.Fatal(err)
	}
	got, err := store.ClusterSizes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got[3] != 2 || got[8] != 1 {
		t.Errorf("sizes = %v", got)
	}

	records := []homology.Record{
		{
			ID: "g1", Stem: "genomeA", SeqID: "chr1", Start: 100, Strand: "+",
			ProteinLen: 210, ClusterID: 3, ClusterSize: 2,
			SyntenyID: 987654321, SyntenyCount: 2, Reason: "mode2",
		},
		{
			ID: "g2", Stem: "genomeB", SeqID: "chr4", Start: 55, Strand: "-",
			ProteinLen: 205, ClusterID: 3, ClusterSize: 2,
		},
		{
			ID: "g3", Stem: "genomeB", SeqID: "chr2", Start: 10, Strand: "+",
			ProteinLen: 80, ClusterID: 8, ClusterSize: 1, Reason: "singleton",
		},
	}
	if err := store.LoadGenes(ctx, records); err != nil {
		t.Fatal(err)
	}

	genomes, err := store.GetCluster(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(genomes) != 2 {
		t.Fatalf("genomes = %v", genomes)
	}
	a := genomes["genomeA"]
	if len(a) != 1 || a[0].SyntenyID != 987654321 || a[0].Reason != "mode2" {
		t.Errorf("genomeA rows = %+v", a)
	}
	b := genomes["genomeB"]
	if len(b) != 1 || b[0].ID != "g2" || b[0].SyntenyID != 0 {
		t.Errorf("genomeB rows = %+v", b)
	}

	// Reloading the same gene replaces rather than duplicating.
	records[0].Reason = "median"
	if err := store.LoadGenes(ctx, records[:1]); err != nil {
		t.Fatal(err)
	}
	genomes, err = store.GetCluster(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if a := genomes["genomeA"]; len(a) != 1 || a[0].Reason != "median" {
		t.Errorf("replaced row = %+v", a)
	}
}
