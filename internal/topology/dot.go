package topology

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/netarch/teflow/internal/model"
)

// dotTemplateSrc renders a Graphviz undirected graph, per spec.md §6: nodes
// listed, edges labeled "(u_port,v_port)".
const dotTemplateSrc = `graph topology {
{{- range .Nodes }}
  "{{ . }}";
{{- end }}
{{- range .Edges }}
  "{{ .U }}" -- "{{ .V }}" [label="({{ .UPort }},{{ .VPort }})"];
{{- end }}
}
`

var dotTemplate = template.Must(template.New("topology-dot").Parse(dotTemplateSrc))

type dotData struct {
	Nodes []int
	Edges []model.Edge
}

// DOT renders the current snapshot as a Graphviz document.
func (v *Viewer) DOT() (string, error) {
	edges := v.Snapshot()

	nodeSet := make(map[int]struct{}, len(edges)*2)
	for _, e := range edges {
		nodeSet[e.U] = struct{}{}
		nodeSet[e.V] = struct{}{}
	}
	nodes := make([]int, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})

	var buf bytes.Buffer
	if err := dotTemplate.Execute(&buf, dotData{Nodes: nodes, Edges: edges}); err != nil {
		return "", fmt.Errorf("topology: render dot: %w", err)
	}
	return buf.String(), nil
}
