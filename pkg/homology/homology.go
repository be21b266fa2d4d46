// Package homology holds the shared gene-table model: one Record per gene
// with its cluster assignment and, once computed, its synteny-anchor
// annotation. Tables are tab-separated and grouped per genome stem.
package homology

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File name endings for per-set tables.
const (
	FilesEnding    = "-files.tsv"
	HomologyEnding = "-homology.tsv"
	SyntenyEnding  = "-synteny.tsv"
	ProxyEnding    = "-proxy.tsv"
)

var (
	ErrNoFilesTable = errors.New("files table not found")
	ErrStemMismatch = errors.New("table count differs from files table")
)

// Record is one gene row. Synteny fields are zero until the synteny stage
// has run; Stem and Reason are filled during proxy selection.
type Record struct {
	ID          string
	SeqID       string
	Start       int
	Strand      string
	ProteinLen  int
	ClusterID   int
	ClusterSize int

	Footprint    int
	HashDir      int
	SyntenyID    uint64
	SyntenyCount int
	SelfCount    int

	Stem   string
	Reason string
}

// FileSet lists the genome stems of a set, in the order recorded by the
// preparation step (ascending sequence count).
type FileSet struct {
	SetName string
	Dir     string
	Stems   []string
}

// ReadFileSet reads the "<set>-files.tsv" table written during set
// preparation. The stem column is required; other columns are stats only.
func ReadFileSet(dir, setName string) (*FileSet, error) {
	path := filepath.Join(dir, setName+FilesEnding)
	rows, header, err := readTSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoFilesTable)
		}
		return nil, err
	}
	stemCol := -1
	for i, name := range header {
		if name == "stem" {
			stemCol = i
		}
	}
	if stemCol < 0 {
		return nil, fmt.Errorf("%s: missing stem column", path)
	}
	fs := &FileSet{SetName: setName, Dir: dir}
	for _, row := range rows {
		fs.Stems = append(fs.Stems, row[stemCol])
	}
	if len(fs.Stems) == 0 {
		return nil, fmt.Errorf("%s: empty files table", path)
	}
	return fs, nil
}

// WriteFileSet writes the files table with stems in order.
func (fs *FileSet) WriteFileSet() error {
	path := filepath.Join(fs.Dir, fs.SetName+FilesEnding)
	rows := make([][]string, len(fs.Stems))
	for i, stem := range fs.Stems {
		rows[i] = []string{fmt.Sprintf("%d", i), stem}
	}
	return writeTSV(path, []string{"n", "stem"}, rows)
}

// TablePaths finds the per-stem tables with the given ending (for example
// "-homology.tsv" or "-kmer6-synteny.tsv") and returns stem -> path. The
// number of discovered tables must match the files table.
func (fs *FileSet) TablePaths(ending string) (map[string]string, error) {
	matches, err := filepath.Glob(filepath.Join(fs.Dir, "*"+ending))
	if err != nil {
		return nil, err
	}
	paths := make(map[string]string, len(matches))
	for _, path := range matches {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, ending)
		paths[stem] = path
	}
	if len(paths) != len(fs.Stems) {
		return nil, fmt.Errorf("%s tables (%d) vs files table (%d): %w",
			ending, len(paths), len(fs.Stems), ErrStemMismatch)
	}
	return paths, nil
}

// GroupByScaffold partitions records by scaffold (seq_id), preserving row
// order within each scaffold. Scaffolds are returned in sorted order.
func GroupByScaffold(records []Record) [][]Record {
	byScaffold := make(map[string][]Record)
	for _, r := range records {
		byScaffold[r.SeqID] = append(byScaffold[r.SeqID], r)
	}
	scaffolds := make([]string, 0, len(byScaffold))
	for scaffold := range byScaffold {
		scaffolds = append(scaffolds, scaffold)
	}
	sort.Strings(scaffolds)
	groups := make([][]Record, 0, len(scaffolds))
	for _, scaffold := range scaffolds {
		groups = append(groups, byScaffold[scaffold])
	}
	return groups
}
