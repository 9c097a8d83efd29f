package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/netarch/teflow/internal/model"
)

// graphDoc mirrors the on-disk graph JSON shape from spec.md §6.
type graphDoc struct {
	Nodes    []string   `json:"nodes"`
	SDNNodes []string   `json:"sdn_nodes"`
	Links    []linkSpec `json:"links"`
}

type linkSpec struct {
	U   string  `json:"u"`
	V   string  `json:"v"`
	Cap float64 `json:"cap"` // Gbps on the wire
}

// Graph is the parsed network description: every node id and the live
// GraphCaps the planner needs.
type Graph struct {
	Nodes []int
	Caps  model.GraphCaps
}

// LoadGraph reads the graph JSON at path and converts it into a Graph. Link
// capacity is stored internally in Mbps (cap × 1000, per spec.md §6); a
// link is SDN-controllable iff both endpoints appear in sdn_nodes. Power
// cost is left unset so GraphCaps.PowerCostOf falls back to its
// capacity×0.1 default.
func LoadGraph(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("config: read graph %s: %w", path, err)
	}

	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Graph{}, fmt.Errorf("config: parse graph %s: %w", path, err)
	}

	nodes := make([]int, 0, len(doc.Nodes))
	for _, s := range doc.Nodes {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Graph{}, fmt.Errorf("config: graph node %q is not an integer: %w", s, err)
		}
		nodes = append(nodes, n)
	}

	sdnSet := make(map[int]bool, len(doc.SDNNodes))
	for _, s := range doc.SDNNodes {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Graph{}, fmt.Errorf("config: graph sdn_node %q is not an integer: %w", s, err)
		}
		sdnSet[n] = true
	}

	caps := model.NewGraphCaps()
	for _, l := range doc.Links {
		u, err := strconv.Atoi(l.U)
		if err != nil {
			return Graph{}, fmt.Errorf("config: link endpoint %q is not an integer: %w", l.U, err)
		}
		v, err := strconv.Atoi(l.V)
		if err != nil {
			return Graph{}, fmt.Errorf("config: link endpoint %q is not an integer: %w", l.V, err)
		}
		link := model.NewLinkId(u, v)
		caps.CapacityMbps[link] = l.Cap * 1000
		caps.IsSDN[link] = sdnSet[u] && sdnSet[v]
	}

	return Graph{Nodes: nodes, Caps: caps}, nil
}
