// Package history stores the moves of a game as a directed graph with
// variations. Nodes live in an arena addressed by stable integer ids; edges are
// id pairs and are never removed or re-pointed, so rewinding and playing a
// different move keeps the old line as a sibling branch.
package history

import (
	"errors"

	"goban/internal/domain/board"
)

// ErrNoCurrentNode is returned when the cursor refers to a node that is not in
// the arena. It indicates a defect in the caller, not a user error.
var ErrNoCurrentNode = errors.New("history: current node does not exist")

type NodeID int

// RootID is the synthetic root holding the "no move" sentinel.
const RootID NodeID = 0

// noParent marks the root in the parent table.
const noParent NodeID = -1

type Node struct {
	ID   NodeID     `json:"id"`
	Move board.Move `json:"move"`
}

type Edge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// PopResult describes one step back. Previous is the move of the node that is
// current after the pop, nil when the cursor is back at the root.
type PopResult struct {
	Popped   board.Move
	Previous *board.Move
}

// PreviousPoint is the last-move marker to show after the pop.
func (r PopResult) PreviousPoint() *board.Point {
	if r.Previous == nil {
		return nil
	}
	p := r.Previous.Point()
	return &p
}

// PreviousKo is the ko point that was in force after the previous move.
func (r PopResult) PreviousKo() *board.Point {
	if r.Previous == nil || r.Previous.Ko == nil {
		return nil
	}
	ko := *r.Previous.Ko
	return &ko
}

// Graph is not safe for concurrent use.
type Graph struct {
	nodes    []Node
	edges    []Edge
	outgoing [][]NodeID
	parent   []NodeID
	current  NodeID
	// picker maps a branch point to the child that Advance follows.
	picker map[NodeID]NodeID
}

func New() *Graph {
	return &Graph{
		nodes:    []Node{{ID: RootID}},
		outgoing: [][]NodeID{nil},
		parent:   []NodeID{noParent},
		current:  RootID,
		picker:   make(map[NodeID]NodeID),
	}
}

func (g *Graph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Push adds m as a new child of the current node and moves the cursor onto it.
// If the current node already had children the new one is a variation and
// becomes the preferred continuation.
func (g *Graph) Push(m board.Move) error {
	if !g.has(g.current) {
		return ErrNoCurrentNode
	}
	from := g.current
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Move: m})
	g.outgoing = append(g.outgoing, nil)
	g.parent = append(g.parent, from)

	if len(g.outgoing[from]) > 0 {
		g.picker[from] = id
	}
	g.outgoing[from] = append(g.outgoing[from], id)
	g.edges = append(g.edges, Edge{From: from, To: id})
	g.current = id
	return nil
}

// Pop moves the cursor to the parent of the current node. It reports false at
// the root.
func (g *Graph) Pop() (PopResult, bool) {
	if g.current == RootID || !g.has(g.current) {
		return PopResult{}, false
	}
	popped := g.nodes[g.current].Move
	g.current = g.parent[g.current]

	res := PopResult{Popped: popped}
	if g.current != RootID {
		prev := g.nodes[g.current].Move
		res.Previous = &prev
	}
	return res, true
}

// Advance follows the preferred child, or the only child, or the first child
// when a branch point has no recorded preference.
func (g *Graph) Advance() (board.Move, bool) {
	if !g.has(g.current) {
		return board.Move{}, false
	}
	children := g.outgoing[g.current]
	if len(children) == 0 {
		return board.Move{}, false
	}
	next, ok := g.picker[g.current]
	if !ok {
		next = children[0]
	}
	g.current = next
	return g.nodes[next].Move, true
}

// SelectVariation records the child of the current node played at p as the
// preferred continuation. It reports whether such a child exists.
func (g *Graph) SelectVariation(p board.Point) bool {
	if !g.has(g.current) {
		return false
	}
	idx := p.Index()
	for _, child := range g.outgoing[g.current] {
		if g.nodes[child].Move.Index == idx {
			g.picker[g.current] = child
			return true
		}
	}
	return false
}

// PossibleNextPoints lists the points of every immediate continuation, in the
// order the branches were created, without duplicates.
func (g *Graph) PossibleNextPoints() []board.Point {
	if !g.has(g.current) {
		return nil
	}
	children := g.outgoing[g.current]
	points := make([]board.Point, 0, len(children))
	seen := make(map[int]struct{}, len(children))
	for _, child := range children {
		idx := g.nodes[child].Move.Index
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		points = append(points, board.PointFromIndex(idx))
	}
	return points
}

// ClearPreferences forgets every recorded preference, so Advance falls back to
// the first child at each branch point.
func (g *Graph) ClearPreferences() {
	g.picker = make(map[NodeID]NodeID)
}

func (g *Graph) Current() NodeID {
	return g.current
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.has(id) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Children returns a copy of the child ids of id in creation order.
func (g *Graph) Children(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	return append([]NodeID(nil), g.outgoing[id]...)
}

// Parent returns the parent of id; false for the root or an unknown id.
func (g *Graph) Parent(id NodeID) (NodeID, bool) {
	if !g.has(id) || id == RootID {
		return noParent, false
	}
	return g.parent[id], true
}

// Preferred returns the recorded preferred child of a branch point.
func (g *Graph) Preferred(id NodeID) (NodeID, bool) {
	child, ok := g.picker[id]
	return child, ok
}

// Edges returns a copy of every edge in creation order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len is the number of nodes including the root.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// PathToCurrent returns the node ids from the first move to the cursor,
// excluding the root.
func (g *Graph) PathToCurrent() []NodeID {
	var path []NodeID
	for id := g.current; id != RootID && g.has(id); id = g.parent[id] {
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Depth is the number of moves between the root and the cursor.
func (g *Graph) Depth() int {
	return len(g.PathToCurrent())
}

// HasNext reports whether Advance would move the cursor.
func (g *Graph) HasNext() bool {
	return g.has(g.current) && len(g.outgoing[g.current]) > 0
}
