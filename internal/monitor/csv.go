package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/netarch/teflow/internal/model"
)

// WriteCSV writes every link's time series to w in time_iso,u,v,rx_mbps,
// tx_mbps,util order. If limit > 0, only the most recent limit points per
// link are emitted, bounding export size per spec.md §4.5.
func (m *Monitor) WriteCSV(w io.Writer, limit int) error {
	m.mu.RLock()
	links := make([]model.LinkId, 0, len(m.links))
	series := make(map[model.LinkId][]model.Sample, len(m.links))
	for link, st := range m.links {
		links = append(links, link)
		series[link] = append([]model.Sample(nil), st.series...)
	}
	m.mu.RUnlock()

	sort.Slice(links, func(i, j int) bool {
		if links[i].U != links[j].U {
			return links[i].U < links[j].U
		}
		return links[i].V < links[j].V
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time_iso", "u", "v", "rx_mbps", "tx_mbps", "util"}); err != nil {
		return fmt.Errorf("monitor: write csv header: %w", err)
	}

	for _, link := range links {
		s := series[link]
		if limit > 0 && len(s) > limit {
			s = s[len(s)-limit:]
		}
		for _, sample := range s {
			row := []string{
				sample.Time.UTC().Format("2006-01-02T15:04:05Z"),
				fmt.Sprintf("%d", link.U),
				fmt.Sprintf("%d", link.V),
				fmt.Sprintf("%g", sample.RxMbps),
				fmt.Sprintf("%g", sample.TxMbps),
				fmt.Sprintf("%g", sample.Util),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("monitor: write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("monitor: flush csv: %w", err)
	}
	return nil
}
