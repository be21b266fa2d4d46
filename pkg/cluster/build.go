package cluster

import (
	"context"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ncgr/azulejo/pkg/ident"
)

// BuildOptions control cluster parsing and counting.
type BuildOptions struct {
	// Synonyms maps canonical IDs to equivalent IDs appended to cluster
	// membership before any counting.
	Synonyms map[string][]string
	// CountClusters selects cluster-level presence counting. When false,
	// component counts are weighted by membership size and singleton
	// clusters are skipped (gene-level frequency mass).
	CountClusters bool
	// Delete removes each cluster file as it is consumed, and the
	// directory afterwards. A missing file or directory is not an error.
	Delete bool
	// Workers bounds parallel cluster parsing; <= 0 means GOMAXPROCS.
	Workers int
}

// BuildResult is the full output of a cluster-graph build.
type BuildResult struct {
	Graph *Graph

	// Per-row parallel slices: one row per (cluster, member) pair, in
	// ascending cluster-ID order.
	ClusterIDs []int
	IDs        []string
	Sizes      []int

	// Per-cluster membership sizes, ascending cluster-ID order.
	Degrees []int

	// DegreeCounter histograms cluster sizes: size -> cluster count.
	DegreeCounter map[int]int

	// AnyCounter counts identifier components appearing anywhere in a
	// cluster; AllCounter counts those appearing in every member.
	// AllCounter[c] <= AnyCounter[c] always holds.
	AnyCounter map[string]int
	AllCounter map[string]int
}

// partial holds the shared-nothing result for one cluster; partials are
// merged by a single-threaded fold in ascending cluster-ID order.
type partial struct {
	id  int
	ids []string
	any map[string]int
	all map[string]int
}

func buildPartial(c *Cluster, opt *BuildOptions) partial {
	c.Expand(opt.Synonyms)
	n := c.Size()
	p := partial{
		id:  c.ID,
		ids: c.Members,
		any: make(map[string]int),
		all: make(map[string]int),
	}
	componentCounts := make(map[string]int)
	for _, id := range c.Members {
		for _, sub := range ident.ParseSubIDs(id) {
			componentCounts[sub]++
		}
	}
	if opt.CountClusters {
		for component, count := range componentCounts {
			p.any[component] = 1
			if count == n {
				p.all[component] = 1
			}
		}
	} else if n > 1 {
		for component, count := range componentCounts {
			p.any[component] = n
			if count == n {
				p.all[component] = n
			}
		}
	}
	return p
}

// Build parses every cluster in dir and reduces the per-cluster partials
// into one BuildResult. Parsing is parallel per cluster; the graph and
// counters are written by the merge pass only, so edge overwrites happen
// in ascending cluster-ID order.
func Build(ctx context.Context, dir string, opt BuildOptions) (*BuildResult, error) {
	clusterIDs, paths, err := DiscoverClusters(dir)
	if err != nil {
		return nil, err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	partials := make([]partial, 0, len(clusterIDs))
	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, id := range clusterIDs {
		id := id
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := readFastaIDs(paths[id])
			if err != nil {
				return err
			}
			p := buildPartial(&Cluster{ID: id, Members: ids}, &opt)
			if opt.Delete {
				if err := os.Remove(paths[id]); err != nil && !os.IsNotExist(err) {
					return err
				}
			}
			mu.Lock()
			partials = append(partials, p)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if opt.Delete {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	sort.Slice(partials, func(i, j int) bool { return partials[i].id < partials[j].id })

	result := &BuildResult{
		Graph:         NewGraph(),
		DegreeCounter: make(map[int]int),
		AnyCounter:    make(map[string]int),
		AllCounter:    make(map[string]int),
	}
	for _, p := range partials {
		n := len(p.ids)
		result.Degrees = append(result.Degrees, n)
		result.DegreeCounter[n]++
		for _, id := range p.ids {
			result.ClusterIDs = append(result.ClusterIDs, p.id)
			result.IDs = append(result.IDs, id)
			result.Sizes = append(result.Sizes, n)
		}
		mergeCounter(result.AnyCounter, p.any)
		mergeCounter(result.AllCounter, p.all)
		result.Graph.AddClique(p.ids, n)
	}
	return result, nil
}

func mergeCounter(dst, src map[string]int) {
	for key, count := range src {
		dst[key] += count
	}
}
