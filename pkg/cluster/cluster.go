// Package cluster turns the raw output of the external greedy clustering
// step (a directory of per-cluster FASTA files) into a weighted
// co-membership graph, per-cluster size statistics and identifier-component
// frequency counters.
package cluster

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrEmptySynonyms = errors.New("synonym table is empty")
	ErrNoSynonymKey  = errors.New("synonym table has no Substr or Dups column")
	ErrEmptyClusters = errors.New("cluster directory contains no clusters")
)

// Cluster is one group of sequence IDs emitted by the clustering step.
// Members are unique and in first-seen order.
type Cluster struct {
	ID      int
	Members []string
}

// Size returns the number of member IDs.
func (c *Cluster) Size() int { return len(c.Members) }

// Expand appends synonyms of existing members, once per cluster. The
// synonym map is keyed by canonical ID; values are equivalent IDs
// (substrings or duplicates) that should share the cluster's membership.
func (c *Cluster) Expand(synonyms map[string][]string) {
	if len(synonyms) == 0 {
		return
	}
	for _, id := range c.Members[:len(c.Members):len(c.Members)] {
		c.Members = append(c.Members, synonyms[id]...)
	}
}

// ReadSynonyms reads a tab-separated synonym table with an "id" column and
// either a "Substr" or a "Dups" column. A "#file" column, if present, is
// ignored. A header-only table yields an empty map.
func ReadSynonyms(path string) (map[string][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("synonym table %s: %w", path, err)
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("synonym table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("synonym table %s: %w", path, ErrEmptySynonyms)
	}
	idCol := -1
	keyCol := -1
	for i, name := range rows[0] {
		switch name {
		case "id":
			idCol = i
		case "Substr", "Dups":
			keyCol = i
		}
	}
	if idCol < 0 || keyCol < 0 {
		return nil, fmt.Errorf("synonym table %s: %w", path, ErrNoSynonymKey)
	}
	synonyms := make(map[string][]string)
	for _, row := range rows[1:] {
		if len(row) <= idCol || len(row) <= keyCol {
			continue
		}
		id := row[idCol]
		synonyms[id] = append(synonyms[id], row[keyCol])
	}
	return synonyms, nil
}

// readFastaIDs collects the unique sequence IDs from one FASTA file,
// keeping first-seen order.
func readFastaIDs(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var ids []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ">") {
			continue
		}
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			continue
		}
		id := fields[0]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, scanner.Err()
}

// DiscoverClusters lists a cluster directory and returns the per-cluster
// file paths keyed by integer cluster ID, sorted by ID. Files are named by
// the clustering step with the bare cluster number.
func DiscoverClusters(dir string) ([]int, map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("cluster directory %s: %w", dir, err)
	}
	paths := make(map[int]string)
	var ids []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("cluster directory %s: non-numeric cluster file %q", dir, entry.Name())
		}
		ids = append(ids, id)
		paths[id] = filepath.Join(dir, entry.Name())
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("cluster directory %s: %w", dir, ErrEmptyClusters)
	}
	sort.Ints(ids)
	return ids, paths, nil
}
