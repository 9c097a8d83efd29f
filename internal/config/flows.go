package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/netarch/teflow/internal/model"
)

// demoFlow is one row of the deterministic demo flow set used when the
// flows CSV is absent, per spec.md §6.
type demoFlow struct {
	src, dst int
	demand   float64
}

var demoFlows = []demoFlow{
	{1, 9, 200},
	{3, 7, 150},
	{4, 12, 180},
	{6, 11, 120},
	{8, 10, 160},
}

// LoadFlows loads flows from a CSV file at path with header
// "flow_id,s,d,demand_mbps". Rows with fewer than 4 columns are skipped.
// Mirrors the two-tier "try primary, fall back" shape of the teacher's
// bootstrap config loader: if path does not exist, the deterministic demo
// set is returned instead of an error.
func LoadFlows(path string) ([]model.Flow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[config] flows file %s absent, using deterministic demo flow set", path)
			return demoFlowSet(), nil
		}
		return nil, fmt.Errorf("config: open flows %s: %w", path, err)
	}
	defer f.Close()

	return parseFlowsCSV(f)
}

func parseFlowsCSV(r io.Reader) ([]model.Flow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may be short; we skip them ourselves

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("config: parse flows csv: %w", err)
	}
	if len(rows) == 0 {
		return demoFlowSet(), nil
	}

	var flows []model.Flow
	for _, row := range rows[1:] { // skip header
		if len(row) < 4 {
			continue
		}
		src, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		dst, err := strconv.Atoi(row[2])
		if err != nil {
			continue
		}
		demand, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		flows = append(flows, model.Flow{ID: row[0], Src: src, Dst: dst, DemandMbps: demand})
	}
	return flows, nil
}

func demoFlowSet() []model.Flow {
	flows := make([]model.Flow, 0, len(demoFlows))
	for i, d := range demoFlows {
		flows = append(flows, model.Flow{
			ID:         strconv.Itoa(i + 1),
			Src:        d.src,
			Dst:        d.dst,
			DemandMbps: d.demand,
		})
	}
	return flows
}
