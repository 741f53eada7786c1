package workflow

import (
	"defectboard/bizerror"
	"net/http"
)

// Storage keys of the persisted editor state.
const (
	KeyNodes  = "workflowNodes"
	KeyEdges  = "workflowEdges"
	KeyLayout = "workflowLayout"
)

const MarkerArrowClosed = "arrowclosed"

var (
	ErrNodeNotFound = bizerror.NewBizError(http.StatusNotFound, "workflow.node_not_found", "workflow node not found")
	ErrEdgeNotFound = bizerror.NewBizError(http.StatusNotFound, "workflow.edge_not_found", "workflow edge not found")
	ErrEmptyLabel   = bizerror.NewBizError(http.StatusBadRequest, "workflow.empty_label", "status label must not be empty")
)

// Position only drives canvas layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one lifecycle status.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Color    string   `json:"color,omitempty"`
	Position Position `json:"position"`
}

// Edge is one allowed transition between two statuses.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Animated  bool   `json:"animated"`
	MarkerEnd string `json:"markerEnd,omitempty"`
}

type Snapshot struct {
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
	Horizontal bool   `json:"horizontal"`
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Nodes:      append([]Node{}, s.Nodes...),
		Edges:      append([]Edge{}, s.Edges...),
		Horizontal: s.Horizontal,
	}
}

func (s Snapshot) indexOfNode(id string) int {
	for i, n := range s.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// PaletteEntry is a status template that can be dropped on the canvas.
type PaletteEntry struct {
	Label string `json:"label" binding:"required,lte=64"`
	Color string `json:"color" binding:"lte=32"`
}

var DefaultPalette = []PaletteEntry{
	{Label: "NEW", Color: "#1890ff"},
	{Label: "OPEN", Color: "#fa8c16"},
	{Label: "IN PROGRESS", Color: "#13c2c2"},
	{Label: "FIXED", Color: "#52c41a"},
	{Label: "RETEST", Color: "#722ed1"},
	{Label: "REOPEN", Color: "#f5222d"},
	{Label: "CLOSED", Color: "#8c8c8c"},
	{Label: "REJECTED", Color: "#595959"},
	{Label: "DEFERRED", Color: "#faad14"},
}

func newEdge(source, target string) Edge {
	return Edge{ID: "e" + source + "-" + target, Source: source, Target: target, Animated: true, MarkerEnd: MarkerArrowClosed}
}

// DefaultSnapshot is the NEW -> OPEN -> FIXED chain used when nothing usable is stored.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Nodes: []Node{
			{ID: "1", Label: "NEW", Color: "#1890ff", Position: Position{X: 0, Y: 0}},
			{ID: "2", Label: "OPEN", Color: "#fa8c16", Position: Position{X: 0, Y: 120}},
			{ID: "3", Label: "FIXED", Color: "#52c41a", Position: Position{X: 0, Y: 240}},
		},
		Edges:      []Edge{newEdge("1", "2"), newEdge("2", "3")},
		Horizontal: false,
	}
}
