// Package synteny detects conserved gene-order signatures. Each gene
// position on a scaffold gets a canonical hash of the surrounding window
// of homology-cluster IDs; hashes recurring on other scaffolds are synteny
// anchors.
package synteny

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"

	"github.com/ncgr/azulejo/pkg/homology"
)

// Window is the canonicalized gene-order pattern starting at one locus.
// The zero Window means undefined: the span would cross the scaffold end
// or include a singleton cluster.
type Window struct {
	// Span is the number of raw loci consumed.
	Span int
	// Direction is +1 when the forward orientation produced the hash,
	// -1 for the reverse orientation.
	Direction int
	// Hash identifies the pattern independent of orientation.
	Hash uint64
}

// hashClusters is FNV-1a over the cluster IDs in order. FNV is stable
// across runs, which the anchor tables require.
func hashClusters(clusterIDs []int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, id := range clusterIDs {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// canonicalize hashes the collected cluster IDs forward and reversed and
// keeps the greater hash. Equal hashes (palindromic windows) canonicalize
// to the reverse orientation.
func canonicalize(clusterIDs []int, span int) Window {
	fwd := hashClusters(clusterIDs)
	reversed := make([]int, len(clusterIDs))
	for i, id := range clusterIDs {
		reversed[len(clusterIDs)-1-i] = id
	}
	rev := hashClusters(reversed)
	if fwd > rev {
		return Window{Span: span, Direction: 1, Hash: fwd}
	}
	return Window{Span: span, Direction: -1, Hash: rev}
}

// KmerWindow hashes the k consecutive loci starting at first. The window
// is undefined if it runs past the scaffold end or any locus belongs to a
// cluster of size 1.
func KmerWindow(loci []homology.Record, first, k int) Window {
	if first+k > len(loci) {
		return Window{}
	}
	clusterIDs := make([]int, 0, k)
	for idx := first; idx < first+k; idx++ {
		if loci[idx].ClusterSize == 1 {
			return Window{}
		}
		clusterIDs = append(clusterIDs, loci[idx].ClusterID)
	}
	return canonicalize(clusterIDs, k)
}

// RmerWindow collapses consecutive loci sharing a cluster ID into one
// token and accumulates k distinct tokens; Span is the number of raw loci
// consumed. The same undefined-window rule as KmerWindow applies at every
// locus visited.
func RmerWindow(loci []homology.Record, first, k int) Window {
	clusterIDs := make([]int, 0, k)
	idx := first
	last := 0
	haveLast := false
	for len(clusterIDs) < k {
		if idx >= len(loci) || loci[idx].ClusterSize == 1 {
			return Window{}
		}
		current := loci[idx].ClusterID
		if !haveLast || current != last {
			last = current
			haveLast = true
			clusterIDs = append(clusterIDs, current)
		}
		idx++
	}
	return canonicalize(clusterIDs, idx-first)
}

// BlockName names the window flavor for file naming, e.g. "kmer6".
func BlockName(k int, rmer bool) string {
	if rmer {
		return "rmer" + strconv.Itoa(k)
	}
	return "kmer" + strconv.Itoa(k)
}
