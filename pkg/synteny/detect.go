package synteny

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ncgr/azulejo/logger"
	"github.com/ncgr/azulejo/pkg/homology"
)

// Params configure anchor detection.
type Params struct {
	K    int
	Rmer bool
	// Workers bounds the per-genome fan-out; <= 0 means GOMAXPROCS.
	Workers int
}

// Result holds the annotated per-genome tables and the global anchor
// occurrence counts.
type Result struct {
	// Frames maps genome stem to its annotated records.
	Frames map[string][]homology.Record
	// Anchors maps window hash to the number of windows sharing it
	// across all genomes and scaffolds. Count 1 means private.
	Anchors map[uint64]int
}

// stemResult is the shared-nothing output for one genome; scaffolds are
// processed independently and merged here before the global fold.
type stemResult struct {
	stem    string
	records []homology.Record
	// hashCounts counts nonzero window hashes within this genome.
	hashCounts map[uint64]int
}

func detectStem(stem string, records []homology.Record, p Params) stemResult {
	groups := homology.GroupByScaffold(records)
	out := stemResult{
		stem:       stem,
		records:    make([]homology.Record, 0, len(records)),
		hashCounts: make(map[uint64]int),
	}
	for _, loci := range groups {
		for i := range loci {
			var w Window
			if p.Rmer {
				w = RmerWindow(loci, i, p.K)
			} else {
				w = KmerWindow(loci, i, p.K)
			}
			r := loci[i]
			r.Footprint = w.Span
			r.HashDir = w.Direction
			r.SyntenyID = w.Hash
			if w.Hash != 0 {
				out.hashCounts[w.Hash]++
			}
			out.records = append(out.records, r)
		}
	}
	// Self counts: occurrences of each row's own hash within this genome.
	for i := range out.records {
		if hash := out.records[i].SyntenyID; hash != 0 {
			out.records[i].SelfCount = out.hashCounts[hash]
		}
	}
	return out
}

// Detect computes windows for every genome independently, then performs a
// single global aggregation of hash occurrence counts and writes the
// per-row synteny counts from it.
func Detect(ctx context.Context, frames map[string][]homology.Record, p Params) (*Result, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	stems := make([]string, 0, len(frames))
	for stem := range frames {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	results := make([]stemResult, len(stems))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, stem := range stems {
		i, stem := i, stem
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = detectStem(stem, frames[stem], p)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make(map[string][]homology.Record, len(stems)),
		Anchors: make(map[uint64]int),
	}
	for _, sr := range results {
		for hash, count := range sr.hashCounts {
			result.Anchors[hash] += count
		}
	}
	blockName := BlockName(p.K, p.Rmer)
	for _, sr := range results {
		assigned := 0
		for i := range sr.records {
			if hash := sr.records[i].SyntenyID; hash != 0 {
				assigned++
				sr.records[i].SyntenyCount = result.Anchors[hash]
			}
		}
		nonUnique := assigned - len(sr.hashCounts)
		pct := 0.0
		if assigned > 0 {
			pct = float64(nonUnique) / float64(assigned) * 100.0
		}
		logger.Info("computed synteny blocks",
			zap.String("stem", sr.stem),
			zap.String("block", blockName),
			zap.Int("proteins", len(sr.records)),
			zap.Int("with_hashes", assigned),
			zap.Int("non_unique", nonUnique),
			zap.Float64("non_unique_pct", pct),
		)
		result.Frames[sr.stem] = sr.records
	}
	return result, nil
}

// InformativeAnchors returns the hashes seen more than once, i.e. the
// corroborated anchors.
func (r *Result) InformativeAnchors() []uint64 {
	var hashes []uint64
	for hash, count := range r.Anchors {
		if count > 1 {
			hashes = append(hashes, hash)
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes
}

// WriteAnchorTable writes the global {hash, count} table, most frequent
// anchors first.
func (r *Result) WriteAnchorTable(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)

	hashes := make([]uint64, 0, len(r.Anchors))
	for hash := range r.Anchors {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		if r.Anchors[hashes[i]] != r.Anchors[hashes[j]] {
			return r.Anchors[hashes[i]] > r.Anchors[hashes[j]]
		}
		return hashes[i] < hashes[j]
	})
	fmt.Fprintln(w, "hash\tcount")
	for _, hash := range hashes {
		fmt.Fprintf(w, "%d\t%d\n", hash, r.Anchors[hash])
	}
	return w.Flush()
}
