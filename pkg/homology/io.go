package homology

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

func readTSV(path string) ([][]string, []string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()
	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[1:], all[0], nil
}

func writeTSV(path string, header []string, rows [][]string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	writer := csv.NewWriter(fh)
	writer.Comma = '\t'
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// Table column names. Synteny columns are present only after the synteny
// stage; a reader treats their absence as zero values.
var (
	homologyColumns = []string{
		"id", "seq_id", "start", "strand", "protein_len",
		"cluster_id", "cluster_size",
	}
	syntenyColumns = append(homologyColumns[:len(homologyColumns):len(homologyColumns)],
		"footprint", "hashdir", "synteny_id", "synteny_count", "self_count")
)

// ReadTable reads a homology or synteny table. Missing synteny columns
// default to zero rather than failing the read.
func ReadTable(path string) ([]Record, error) {
	rows, header, err := readTSV(path)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range homologyColumns {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		hash, _ := strconv.ParseUint(field(row, "synteny_id"), 10, 64)
		records = append(records, Record{
			ID:           field(row, "id"),
			SeqID:        field(row, "seq_id"),
			Start:        atoi(field(row, "start")),
			Strand:       field(row, "strand"),
			ProteinLen:   atoi(field(row, "protein_len")),
			ClusterID:    atoi(field(row, "cluster_id")),
			ClusterSize:  atoi(field(row, "cluster_size")),
			Footprint:    atoi(field(row, "footprint")),
			HashDir:      atoi(field(row, "hashdir")),
			SyntenyID:    hash,
			SyntenyCount: atoi(field(row, "synteny_count")),
			SelfCount:    atoi(field(row, "self_count")),
			Stem:         field(row, "stem"),
			Reason:       field(row, "reason"),
		})
	}
	return records, nil
}

// WriteTable writes records in homology layout, or with the synteny
// columns appended when withSynteny is set.
func WriteTable(path string, records []Record, withSynteny bool) error {
	header := homologyColumns
	if withSynteny {
		header = syntenyColumns
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.ID, r.SeqID, strconv.Itoa(r.Start), r.Strand,
			strconv.Itoa(r.ProteinLen), strconv.Itoa(r.ClusterID),
			strconv.Itoa(r.ClusterSize),
		}
		if withSynteny {
			row = append(row,
				strconv.Itoa(r.Footprint),
				strconv.Itoa(r.HashDir),
				strconv.FormatUint(r.SyntenyID, 10),
				strconv.Itoa(r.SyntenyCount),
				strconv.Itoa(r.SelfCount),
			)
		}
		rows = append(rows, row)
	}
	return writeTSV(path, header, rows)
}

// WriteProxyTable writes the concatenated proxy table: synteny layout
// plus the genome stem and the retention reason (empty until
// downselection).
func WriteProxyTable(path string, records []Record) error {
	header := append(syntenyColumns[:len(syntenyColumns):len(syntenyColumns)], "stem", "reason")
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID, r.SeqID, strconv.Itoa(r.Start), r.Strand,
			strconv.Itoa(r.ProteinLen), strconv.Itoa(r.ClusterID),
			strconv.Itoa(r.ClusterSize),
			strconv.Itoa(r.Footprint),
			strconv.Itoa(r.HashDir),
			strconv.FormatUint(r.SyntenyID, 10),
			strconv.Itoa(r.SyntenyCount),
			strconv.Itoa(r.SelfCount),
			r.Stem, r.Reason,
		})
	}
	return writeTSV(path, header, rows)
}

// ClusterAssignment is one row of the cluster-ID table written by the
// cluster stage.
type ClusterAssignment struct {
	ClusterID int
	Size      int
}

// ReadClusterIDTable reads the "<set>-ids.tsv" table into an ID-keyed map.
func ReadClusterIDTable(path string) (map[string]ClusterAssignment, error) {
	rows, header, err := readTSV(path)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"cluster", "siz", "id"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}
	index := make(map[string]ClusterAssignment, len(rows))
	for _, row := range rows {
		clusterID, _ := strconv.Atoi(row[col["cluster"]])
		size, _ := strconv.Atoi(row[col["siz"]])
		index[row[col["id"]]] = ClusterAssignment{ClusterID: clusterID, Size: size}
	}
	return index, nil
}

// AnnotateClusters joins cluster ID and size onto records by gene ID.
// Every record ID must be present in the cluster table; IDs correspond
// between GFF-derived tables and the clustering input by construction.
func AnnotateClusters(records []Record, index map[string]ClusterAssignment) error {
	for i := range records {
		assignment, ok := index[records[i].ID]
		if !ok {
			return fmt.Errorf("id %s not found in clusters", records[i].ID)
		}
		records[i].ClusterID = assignment.ClusterID
		records[i].ClusterSize = assignment.Size
	}
	return nil
}
