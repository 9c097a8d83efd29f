package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netarch/teflow/internal/model"
)

func TestLoadGraphParsesCapacityAndSDN(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "graph.json")

	doc := `{"nodes":["1","2"],"sdn_nodes":["1"],"links":[{"u":"1","v":"2","cap":1}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write graph: %v", err)
	}

	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	link := model.NewLinkId(1, 2)
	if got := g.Caps.CapacityMbps[link]; got != 1000 {
		t.Fatalf("got capacity %v, want 1000 Mbps", got)
	}
	if g.Caps.IsSDN[link] {
		t.Fatalf("got is_sdn=true, want false (only node 1 is an SDN node)")
	}
	if got := g.Caps.PowerCostOf(link); got != 100 {
		t.Fatalf("got power cost %v, want default 100", got)
	}
}

func TestLoadGraphBothEndpointsSDN(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "graph.json")

	doc := `{"nodes":["1","2"],"sdn_nodes":["1","2"],"links":[{"u":"1","v":"2","cap":1}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write graph: %v", err)
	}

	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if !g.Caps.IsSDN[model.NewLinkId(1, 2)] {
		t.Fatalf("want is_sdn=true when both endpoints are SDN nodes")
	}
}

func TestLoadGraphMissingFile(t *testing.T) {
	if _, err := LoadGraph("/nonexistent/graph.json"); err == nil {
		t.Error("want error for nonexistent file")
	}
}
