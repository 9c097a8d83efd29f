package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFlowsParsesCSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "flows.csv")

	content := "flow_id,s,d,demand_mbps\n1,1,2,100\n2,3,4,50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write flows: %v", err)
	}

	flows, err := LoadFlows(path)
	if err != nil {
		t.Fatalf("LoadFlows: %v", err)
	}
	if len(flows) != 2 {
		t.Fatalf("got %d flows, want 2", len(flows))
	}
	if flows[0].Src != 1 || flows[0].Dst != 2 || flows[0].DemandMbps != 100 {
		t.Fatalf("got %+v, want {src:1 dst:2 demand:100}", flows[0])
	}
}

func TestLoadFlowsSkipsMalformedRows(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "flows.csv")

	content := "flow_id,s,d,demand_mbps\n1,2,3\n2,1,2,100\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write flows: %v", err)
	}

	flows, err := LoadFlows(path)
	if err != nil {
		t.Fatalf("LoadFlows: %v", err)
	}
	if len(flows) != 1 {
		t.Fatalf("got %d flows, want 1 (short row skipped)", len(flows))
	}
}

func TestLoadFlowsFallsBackToDemoSetWhenAbsent(t *testing.T) {
	flows, err := LoadFlows(filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("LoadFlows: %v", err)
	}
	if len(flows) != 5 {
		t.Fatalf("got %d demo flows, want 5", len(flows))
	}
	if flows[0].Src != 1 || flows[0].Dst != 9 || flows[0].DemandMbps != 200 {
		t.Fatalf("got %+v, want first demo flow {1,9,200}", flows[0])
	}
}
