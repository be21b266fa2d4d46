package cluster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Graph is the undirected co-membership graph. Nodes are sequence IDs;
// an edge joins every pair of IDs sharing a cluster of size > 1, weighted
// by that cluster's size. Re-adding an edge overwrites its weight
// (last-write-wins, not additive).
type Graph struct {
	nodes map[string]bool
	edges map[[2]string]int
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		edges: make(map[[2]string]int),
	}
}

func edgeKey(u, v string) [2]string {
	if u > v {
		u, v = v, u
	}
	return [2]string{u, v}
}

func (g *Graph) AddNode(id string) { g.nodes[id] = true }

// AddClique adds every member as a node and, for cliques of more than one
// member, the complete pairwise edge set at the given weight.
func (g *Graph) AddClique(ids []string, weight int) {
	for _, id := range ids {
		g.nodes[id] = true
	}
	if len(ids) < 2 {
		return
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			g.edges[edgeKey(ids[i], ids[j])] = weight
		}
	}
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// EdgeWeight returns the weight of edge (u,v) and whether it exists.
func (g *Graph) EdgeWeight(u, v string) (int, bool) {
	w, ok := g.edges[edgeKey(u, v)]
	return w, ok
}

// Degree returns the number of edges incident on id.
func (g *Graph) Degree(id string) int {
	degree := 0
	for key := range g.edges {
		if key[0] == id || key[1] == id {
			degree++
		}
	}
	return degree
}

// Nodes returns all node IDs in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WriteGML writes the graph in GML exchange format with stable node
// numbering and edge order.
func (g *Graph) WriteGML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	fmt.Fprintln(bw, "graph [")
	for i, id := range nodes {
		index[id] = i
		fmt.Fprintf(bw, "  node [\n    id %d\n    label \"%s\"\n  ]\n", i, id)
	}
	keys := make([][2]string, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, key := range keys {
		fmt.Fprintf(bw, "  edge [\n    source %d\n    target %d\n    weight %d\n  ]\n",
			index[key[0]], index[key[1]], g.edges[key])
	}
	fmt.Fprintln(bw, "]")
	return bw.Flush()
}

// WriteGMLFile writes the graph to the named file.
func (g *Graph) WriteGMLFile(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return g.WriteGML(fh)
}
