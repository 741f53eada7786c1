// Package workflow edits the directed graph of defect statuses and keeps it persisted.
package workflow

import (
	"context"
	"defectboard/domain/state"
	"defectboard/kv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const DefaultSpacing = 120

type Options struct {
	AllowParallelEdges bool
	IDs                IDGenerator
	Spacing            float64
}

func DefaultOptions() Options {
	return Options{AllowParallelEdges: true, IDs: TimestampIDs{}, Spacing: DefaultSpacing}
}

// Editor owns the workflow graph. Every mutation writes the whole graph back to the store.
type Editor struct {
	lock sync.Mutex

	store    kv.Store
	opts     Options
	snapshot Snapshot
}

// Load restores the graph from store. Absent or unreadable state falls back to DefaultSnapshot.
func Load(ctx context.Context, store kv.Store, opts Options) *Editor {
	if opts.IDs == nil {
		opts.IDs = TimestampIDs{}
	}
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}

	s, err := readSnapshot(ctx, store)
	if err != nil {
		logrus.WithError(err).Warn("stored workflow is unreadable, falling back to default workflow")
		s = DefaultSnapshot()
	}
	s.Edges = pruneDanglingEdges(s.Nodes, s.Edges)

	e := &Editor{store: store, opts: opts, snapshot: s}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.persist(ctx)
	return e
}

func readSnapshot(ctx context.Context, store kv.Store) (Snapshot, error) {
	s := Snapshot{}

	raw, err := store.Load(ctx, KeyNodes)
	if errors.Is(err, kv.ErrKeyNotFound) {
		// nothing saved yet, the layout flag alone is meaningless
		return DefaultSnapshot(), nil
	}
	if err != nil {
		return s, fmt.Errorf("load %s: %w", KeyNodes, err)
	}
	if err := json.Unmarshal(raw, &s.Nodes); err != nil {
		return s, fmt.Errorf("parse %s: %w", KeyNodes, err)
	}
	if s.Nodes == nil {
		// a null document, treated like an absent key; [] is a deliberately emptied graph
		return DefaultSnapshot(), nil
	}

	raw, err = store.Load(ctx, KeyEdges)
	if err == nil {
		if err := json.Unmarshal(raw, &s.Edges); err != nil {
			return s, fmt.Errorf("parse %s: %w", KeyEdges, err)
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		return s, fmt.Errorf("load %s: %w", KeyEdges, err)
	}

	raw, err = store.Load(ctx, KeyLayout)
	if err == nil {
		if err := json.Unmarshal(raw, &s.Horizontal); err != nil {
			return s, fmt.Errorf("parse %s: %w", KeyLayout, err)
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		return s, fmt.Errorf("load %s: %w", KeyLayout, err)
	}

	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	return s, nil
}

func pruneDanglingEdges(nodes []Node, edges []Edge) []Edge {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	kept := make([]Edge, 0, len(edges))
	for _, edge := range edges {
		_, sourceFound := ids[edge.Source]
		_, targetFound := ids[edge.Target]
		if sourceFound && targetFound {
			kept = append(kept, edge)
		} else {
			logrus.WithField("edge", edge.ID).Warn("dropping workflow edge with missing endpoint")
		}
	}
	return kept
}

// persist must be called with lock held. Storage failures are logged and swallowed
// so the in-memory graph stays usable.
func (e *Editor) persist(ctx context.Context) {
	values := map[string]interface{}{
		KeyNodes:  e.snapshot.Nodes,
		KeyEdges:  e.snapshot.Edges,
		KeyLayout: e.snapshot.Horizontal,
	}
	for _, key := range []string{KeyNodes, KeyEdges, KeyLayout} {
		raw, err := json.Marshal(values[key])
		if err != nil {
			logrus.WithError(err).WithField("key", key).Error("failed to encode workflow state")
			continue
		}
		if err := e.store.Save(ctx, key, raw); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to persist workflow state")
		}
	}
}

// Flush writes the current graph again, used on shutdown.
func (e *Editor) Flush(ctx context.Context) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.persist(ctx)
}

func (e *Editor) Snapshot() Snapshot {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.snapshot.clone()
}

// AddNode creates a status from a palette entry at the drop position.
func (e *Editor) AddNode(ctx context.Context, entry PaletteEntry, position Position) (*Node, error) {
	label := strings.TrimSpace(entry.Label)
	if label == "" {
		return nil, ErrEmptyLabel
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	node := Node{ID: e.opts.IDs.NewID(label), Label: label, Color: entry.Color, Position: position}
	e.snapshot.Nodes = append(e.snapshot.Nodes, node)
	e.persist(ctx)
	return &node, nil
}

// EditNode replaces the label of a node, keeping id, color and position.
func (e *Editor) EditNode(ctx context.Context, id string, label string) (*Node, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyLabel
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	i := e.snapshot.indexOfNode(id)
	if i < 0 {
		return nil, ErrNodeNotFound
	}
	e.snapshot.Nodes[i].Label = label
	node := e.snapshot.Nodes[i]
	e.persist(ctx)
	return &node, nil
}

// DeleteNode removes the node and every edge touching it.
func (e *Editor) DeleteNode(ctx context.Context, id string) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	i := e.snapshot.indexOfNode(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	nodes := make([]Node, 0, len(e.snapshot.Nodes)-1)
	nodes = append(nodes, e.snapshot.Nodes[:i]...)
	nodes = append(nodes, e.snapshot.Nodes[i+1:]...)

	edges := make([]Edge, 0, len(e.snapshot.Edges))
	for _, edge := range e.snapshot.Edges {
		if edge.Source != id && edge.Target != id {
			edges = append(edges, edge)
		}
	}
	e.snapshot.Nodes = nodes
	e.snapshot.Edges = edges
	e.persist(ctx)
	return nil
}

// Connect adds the transition source -> target. With parallel edges disallowed an
// existing transition between the same pair is returned unchanged.
func (e *Editor) Connect(ctx context.Context, source, target string) (*Edge, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.snapshot.indexOfNode(source) < 0 || e.snapshot.indexOfNode(target) < 0 {
		return nil, ErrNodeNotFound
	}
	if !e.opts.AllowParallelEdges {
		for _, edge := range e.snapshot.Edges {
			if edge.Source == source && edge.Target == target {
				found := edge
				return &found, nil
			}
		}
	}

	edge := newEdge(source, target)
	e.snapshot.Edges = append(e.snapshot.Edges, edge)
	e.persist(ctx)
	return &edge, nil
}

// DeleteEdge removes every edge carrying id; parallel edges share their id.
func (e *Editor) DeleteEdge(ctx context.Context, id string) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	edges := make([]Edge, 0, len(e.snapshot.Edges))
	for _, edge := range e.snapshot.Edges {
		if edge.ID != id {
			edges = append(edges, edge)
		}
	}
	if len(edges) == len(e.snapshot.Edges) {
		return ErrEdgeNotFound
	}
	e.snapshot.Edges = edges
	e.persist(ctx)
	return nil
}

func (e *Editor) MoveNode(ctx context.Context, id string, position Position) (*Node, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	i := e.snapshot.indexOfNode(id)
	if i < 0 {
		return nil, ErrNodeNotFound
	}
	e.snapshot.Nodes[i].Position = position
	node := e.snapshot.Nodes[i]
	e.persist(ctx)
	return &node, nil
}

// Relayout flips the orientation and lines the nodes up in list order.
func (e *Editor) Relayout(ctx context.Context) Snapshot {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.snapshot.Horizontal = !e.snapshot.Horizontal
	for i := range e.snapshot.Nodes {
		offset := float64(i) * e.opts.Spacing
		if e.snapshot.Horizontal {
			e.snapshot.Nodes[i].Position = Position{X: offset, Y: 0}
		} else {
			e.snapshot.Nodes[i].Position = Position{X: 0, Y: offset}
		}
	}
	e.persist(ctx)
	return e.snapshot.clone()
}

// StateMachine derives the defect status machine from the graph, states ordered as the nodes.
func (e *Editor) StateMachine() *state.StateMachine {
	s := e.Snapshot()

	labels := make(map[string]string, len(s.Nodes))
	states := make([]state.State, 0, len(s.Nodes))
	for i, n := range s.Nodes {
		labels[n.ID] = n.Label
		states = append(states, state.State{Name: n.Label, Category: categoryOf(i, n.Label), Order: i + 1})
	}

	transitions := make([]state.Transition, 0, len(s.Edges))
	for _, edge := range s.Edges {
		from, to := labels[edge.Source], labels[edge.Target]
		transitions = append(transitions, state.Transition{Name: from + "->" + to, From: from, To: to})
	}
	return state.NewStateMachine(states, transitions)
}

var doneLabels = map[string]bool{"FIXED": true, "CLOSED": true, "REJECTED": true, "DEFERRED": true}

func categoryOf(index int, label string) state.Category {
	if doneLabels[strings.ToUpper(label)] {
		return state.Done
	}
	if index == 0 {
		return state.InBacklog
	}
	return state.InProcess
}
