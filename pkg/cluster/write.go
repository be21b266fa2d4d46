package cluster

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ClusterSetName returns the set name encoding the %identity value, e.g.
// "all-nr-8700" for identity 0.87 and "all-nr-10000" for identity 1.0.
func ClusterSetName(stem string, identity float64) string {
	var digits string
	if identity == 1.0 {
		digits = "10000"
	} else {
		digits = fmt.Sprintf("%.4f", identity)[2:]
	}
	return fmt.Sprintf("%s-nr-%s", stem, digits)
}

// PrettyFloat prints a float with up to the given digits, trailing zeros
// stripped.
func PrettyFloat(val float64, digits int) string {
	s := strconv.FormatFloat(val, 'f', digits, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// WriteDegreeHistogram writes the cluster-size histogram: one row per
// membership size with the cluster count and percentage of all clusters.
func WriteDegreeHistogram(path string, degreeCounter map[int]int) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)

	degrees := make([]int, 0, len(degreeCounter))
	total := 0
	for degree, count := range degreeCounter {
		degrees = append(degrees, degree)
		total += count
	}
	sort.Ints(degrees)
	fmt.Fprintln(w, "degree\tclusters\tpct_total")
	for _, degree := range degrees {
		count := degreeCounter[degree]
		pct := float64(count) * 100.0 / float64(total)
		fmt.Fprintf(w, "%d\t%d\t%06.3f\n", degree, count, pct)
	}
	return w.Flush()
}

// WriteComponentHistogram writes an identifier-component frequency table.
// The count column is headed by the identity value so that histograms from
// different identity levels can be joined side by side. Components with
// counts at or below minFreq are dropped when minFreq > 0.
func WriteComponentHistogram(path string, counter map[string]int, identity float64, minFreq int) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)

	components := make([]string, 0, len(counter))
	for component := range counter {
		if minFreq > 0 && counter[component] <= minFreq {
			continue
		}
		components = append(components, component)
	}
	// Highest counts first; ties alphabetical for stable output.
	sort.Slice(components, func(i, j int) bool {
		if counter[components[i]] != counter[components[j]] {
			return counter[components[i]] > counter[components[j]]
		}
		return components[i] < components[j]
	})
	fmt.Fprintf(w, "id\t%s\n", strconv.FormatFloat(identity, 'f', 6, 64))
	for _, component := range components {
		fmt.Fprintf(w, "%s\t%d\n", component, counter[component])
	}
	return w.Flush()
}

// WriteIDTable writes the cluster/size/id rows, largest clusters first.
func WriteIDTable(path string, result *BuildResult) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)

	order := make([]int, len(result.IDs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if result.Sizes[i] != result.Sizes[j] {
			return result.Sizes[i] > result.Sizes[j]
		}
		return result.ClusterIDs[i] < result.ClusterIDs[j]
	})
	fmt.Fprintln(w, "cluster\tsiz\tid")
	for _, i := range order {
		fmt.Fprintf(w, "%d\t%d\t%s\n", result.ClusterIDs[i], result.Sizes[i], result.IDs[i])
	}
	return w.Flush()
}
