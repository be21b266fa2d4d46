// Package proxy downselects each homology cluster to a single
// representative gene with a deterministic, auditable reason code.
package proxy

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ncgr/azulejo/logger"
	"github.com/ncgr/azulejo/pkg/homology"
)

// IntegrityError reports a violated uniqueness invariant: more than one
// candidate from the same genome inside one tie-break set.
type IntegrityError struct {
	Stem      string
	ClusterID int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("cluster %d is not unique w.r.t. genome %s", e.ClusterID, e.Stem)
}

// Stats accumulate over one downselection run.
type Stats struct {
	ClusterCount           int
	FirstChoiceHits        int
	FirstChoiceUnavailable int
	Dropped                int
}

// SuccessRate is the percentage of clusters whose proxy came from the
// first-preference genome, among clusters where that genome was present.
func (s Stats) SuccessRate() float64 {
	denom := s.ClusterCount - s.FirstChoiceUnavailable
	if denom <= 0 {
		return 0
	}
	return float64(s.FirstChoiceHits) * 100.0 / float64(denom)
}

// UnavailableRate is the percentage of clusters with no first-preference
// member at all.
func (s Stats) UnavailableRate() float64 {
	if s.ClusterCount == 0 {
		return 0
	}
	return float64(s.FirstChoiceUnavailable) * 100.0 / float64(s.ClusterCount)
}

// Selector chooses proxy genes in genome-preference order.
type Selector struct {
	prefs    []string
	prefRank map[string]int
	stats    Stats
}

// NewSelector builds a selector from an ordered genome-stem preference
// list, most preferred first.
func NewSelector(prefs []string) *Selector {
	rank := make(map[string]int, len(prefs))
	for i, stem := range prefs {
		rank[stem] = i
	}
	return &Selector{prefs: prefs, prefRank: rank}
}

// DefaultPreferences is the reverse of file-discovery order (the last
// genome prepared is preferred first).
func DefaultPreferences(stems []string) []string {
	prefs := make([]string, len(stems))
	for i, stem := range stems {
		prefs[len(stems)-1-i] = stem
	}
	return prefs
}

// MergePreferences validates user-supplied stems against the set and
// appends the remaining default order after them.
func MergePreferences(userPrefs, stems []string) ([]string, error) {
	defaults := DefaultPreferences(stems)
	for _, stem := range userPrefs {
		idx := -1
		for i, d := range defaults {
			if d == stem {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("preference %s not in %v", stem, defaults)
		}
		defaults = append(defaults[:idx], defaults[idx+1:]...)
	}
	return append(append([]string{}, userPrefs...), defaults...), nil
}

// candidate is one synteny group's nominee.
type candidate struct {
	row    homology.Record
	reason Reason
}

// chooseByPreference picks the row whose genome stem is earliest in the
// preference list. Two rows sharing the winning stem violate per-genome
// uniqueness and fail loudly.
func (s *Selector) chooseByPreference(rows []homology.Record) (homology.Record, error) {
	best := len(s.prefs)
	var chosen homology.Record
	dup := false
	for _, row := range rows {
		rank, ok := s.prefRank[row.Stem]
		if !ok {
			return homology.Record{}, fmt.Errorf("stem %s not in preference list", row.Stem)
		}
		switch {
		case rank < best:
			best = rank
			chosen = row
			dup = false
		case rank == best:
			dup = true
		}
	}
	if best == len(s.prefs) {
		return homology.Record{}, fmt.Errorf("no preferred stem among %d rows", len(rows))
	}
	if dup {
		return homology.Record{}, &IntegrityError{Stem: chosen.Stem, ClusterID: chosen.ClusterID}
	}
	return chosen, nil
}

// chooseByLength nominates by protein length: the strict modal length if
// one exists, otherwise the low/high median pair, with preference order
// breaking the remaining tie.
func (s *Selector) chooseByLength(rows []homology.Record) (homology.Record, Reason, error) {
	counts := make(map[int]int)
	maxCount := 0
	for _, row := range rows {
		counts[row.ProteinLen]++
		if counts[row.ProteinLen] > maxCount {
			maxCount = counts[row.ProteinLen]
		}
	}
	// A strict mode is a single length value that repeats more often than
	// any other; a multi-way tie at the top count falls through to the
	// median rule.
	modalLen, modalTies := 0, 0
	for length, count := range counts {
		if count == maxCount {
			modalLen = length
			modalTies++
		}
	}
	if maxCount > 1 && modalTies == 1 {
		modal := make([]homology.Record, 0, maxCount)
		for _, row := range rows {
			if row.ProteinLen == modalLen {
				modal = append(modal, row)
			}
		}
		chosen, err := s.chooseByPreference(modal)
		return chosen, Reason{Kind: ReasonMode, N: len(modal)}, err
	}
	lengths := make([]int, 0, len(rows))
	for _, row := range rows {
		lengths = append(lengths, row.ProteinLen)
	}
	sort.Ints(lengths)
	medianLow := lengths[(len(lengths)-1)/2]
	medianHigh := lengths[len(lengths)/2]
	var pair []homology.Record
	for _, row := range rows {
		if row.ProteinLen == medianLow || row.ProteinLen == medianHigh {
			pair = append(pair, row)
		}
	}
	chosen, err := s.chooseByPreference(pair)
	return chosen, Reason{Kind: ReasonMedian}, err
}

// selectCluster decides which single gene of one homology cluster is
// retained and why. Each synteny group nominates one candidate; clusters
// with several groups resolve the final choice by preference among the
// nominees so that exactly one row per cluster survives.
func (s *Selector) selectCluster(rows []homology.Record) (homology.Record, Reason, error) {
	s.stats.ClusterCount++
	firstChoice := s.prefs[0]
	available := false
	for _, row := range rows {
		if row.Stem == firstChoice {
			available = true
			break
		}
	}
	if !available {
		s.stats.FirstChoiceUnavailable++
	}

	var chosen homology.Record
	var reason Reason
	if len(rows) == 1 {
		chosen, reason = rows[0], Reason{Kind: ReasonSingleton}
	} else {
		groups := make(map[uint64][]homology.Record)
		for _, row := range rows {
			groups[row.SyntenyID] = append(groups[row.SyntenyID], row)
		}
		syntenyIDs := make([]uint64, 0, len(groups))
		for id := range groups {
			syntenyIDs = append(syntenyIDs, id)
		}
		sort.Slice(syntenyIDs, func(i, j int) bool { return syntenyIDs[i] < syntenyIDs[j] })

		var candidates []candidate
		for _, syntenyID := range syntenyIDs {
			group := groups[syntenyID]
			var err error
			var c candidate
			switch {
			case len(group) > 1:
				c.row, c.reason, err = s.chooseByLength(group)
				if err != nil {
					return homology.Record{}, Reason{}, err
				}
			case syntenyID != 0:
				c = candidate{row: group[0], reason: Reason{Kind: ReasonBadSynteny}}
			default:
				c = candidate{row: group[0], reason: Reason{Kind: ReasonSingle}}
			}
			if syntenyID == 0 {
				// Unanchored non-chosen members are counted, not
				// force-resolved against the anchored groups.
				s.stats.ClusterCount += len(group) - 1
			}
			candidates = append(candidates, c)
		}
		// Groups nominate independently; the cluster keeps exactly one
		// row, chosen among the nominees by preference rank with gene ID
		// settling equal ranks.
		best := candidates[0]
		for _, c := range candidates[1:] {
			bestRank, ok := s.prefRank[best.row.Stem]
			if !ok {
				bestRank = len(s.prefs)
			}
			rank, ok := s.prefRank[c.row.Stem]
			if !ok {
				rank = len(s.prefs)
			}
			if rank < bestRank || (rank == bestRank && c.row.ID < best.row.ID) {
				best = c
			}
		}
		chosen, reason = best.row, best.reason
	}
	if chosen.Stem == firstChoice {
		s.stats.FirstChoiceHits++
	}
	s.stats.Dropped += len(rows) - 1
	return chosen, reason, nil
}

// Downselect retains exactly one gene per distinct cluster ID. The input
// is the concatenated per-genome synteny tables with Stem set; the output
// keeps the cluster-size/cluster-id sort order of the proxy table.
func (s *Selector) Downselect(records []homology.Record) ([]homology.Record, error) {
	sorted := append([]homology.Record{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ClusterSize != b.ClusterSize {
			return a.ClusterSize < b.ClusterSize
		}
		if a.ClusterID != b.ClusterID {
			return a.ClusterID < b.ClusterID
		}
		if a.SyntenyCount != b.SyntenyCount {
			return a.SyntenyCount < b.SyntenyCount
		}
		if a.SyntenyID != b.SyntenyID {
			return a.SyntenyID < b.SyntenyID
		}
		return a.ID < b.ID
	})

	var chosen []homology.Record
	start := 0
	for start < len(sorted) {
		end := start
		for end < len(sorted) && sorted[end].ClusterID == sorted[start].ClusterID {
			end++
		}
		row, reason, err := s.selectCluster(sorted[start:end])
		if err != nil {
			return nil, err
		}
		row.Reason = reason.String()
		chosen = append(chosen, row)
		start = end
	}
	if len(records) > 0 {
		dropPct := float64(s.stats.Dropped) * 100.0 / float64(len(records))
		logger.Info("downselected proxy genes",
			zap.Int("dropped", s.stats.Dropped),
			zap.Float64("dropped_pct", dropPct),
			zap.Int("genes", len(records)),
		)
	}
	return chosen, nil
}

// SelectionStats returns the running statistics.
func (s *Selector) SelectionStats() Stats { return s.stats }

// LogSummary reports first-choice selection rates.
func (s *Selector) LogSummary() {
	logger.Info("first-choice proxy selections",
		zap.String("first_choice", s.prefs[0]),
		zap.Int("clusters", s.stats.ClusterCount),
		zap.Int("not_in_cluster", s.stats.FirstChoiceUnavailable),
		zap.Float64("not_in_cluster_pct", s.stats.UnavailableRate()),
		zap.Int("chosen_as_proxy", s.stats.FirstChoiceHits),
		zap.Float64("chosen_pct", s.stats.SuccessRate()),
	)
}
