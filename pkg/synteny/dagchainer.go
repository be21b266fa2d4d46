package synteny

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ncgr/azulejo/pkg/homology"
)

// ParseDagchainerID converts a DAGchainer cluster ID such as "cl1" to its
// integer value.
func ParseDagchainerID(ident string) (int, error) {
	if !strings.HasPrefix(ident, "cl") {
		return 0, fmt.Errorf("invalid DAGchainer id %q", ident)
	}
	val, err := strconv.Atoi(ident[2:])
	if err != nil {
		return 0, fmt.Errorf("non-numeric DAGchainer id %q", ident)
	}
	return val, nil
}

// ReadDagchainer reads a headerless DAGchainer cluster table with columns
// (cluster, id) and returns the per-gene synteny assignment plus the
// per-synteny-id occurrence counts.
func ReadDagchainer(path string) (map[string]int, map[int]int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("DAGchainer table %s: %w", path, err)
	}
	defer fh.Close()
	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("DAGchainer table %s: %w", path, err)
	}
	assignments := make(map[string]int, len(rows))
	counts := make(map[int]int)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		syntenyID, err := ParseDagchainerID(row[0])
		if err != nil {
			return nil, nil, err
		}
		assignments[row[1]] = syntenyID
		counts[syntenyID]++
	}
	return assignments, counts, nil
}

// AttachDagchainer joins externally computed synteny assignments onto the
// homology frames. A gene missing from the assignment table defaults to
// synteny 0 rather than failing the run.
func AttachDagchainer(frames map[string][]homology.Record, assignments map[string]int, counts map[int]int) {
	for stem := range frames {
		records := frames[stem]
		for i := range records {
			syntenyID, ok := assignments[records[i].ID]
			if !ok {
				records[i].SyntenyID = 0
				records[i].SyntenyCount = 0
				continue
			}
			records[i].SyntenyID = uint64(syntenyID)
			records[i].SyntenyCount = counts[syntenyID]
		}
	}
}
