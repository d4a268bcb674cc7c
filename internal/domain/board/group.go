package board

// Grid is the flat goban, indexed by Point.Index.
type Grid [Cells]Color

func (g *Grid) At(p Point) Color {
	return g[p.Index()]
}

// Group is a maximal set of orthogonally connected stones of one color.
// Groups are derived from a Grid on demand and are never kept across mutations.
type Group struct {
	Stones    []Point `json:"stones" bson:"stones"`
	Liberties int     `json:"liberties" bson:"liberties"`
	Team      Color   `json:"team" bson:"team"`
}

// floodState carries the scratch marks of one analysis pass.
// libMark holds the stamp of the last group that counted the point as a liberty,
// so a liberty shared by two stones of the same group is counted once.
type floodState struct {
	visited [Cells]bool
	libMark [Cells]int
	stamp   int
	stack   []int
	adj     []Point
}

func (f *floodState) flood(grid *Grid, start int) Group {
	f.stamp++
	color := grid[start]
	group := Group{Team: color}

	f.stack = append(f.stack[:0], start)
	f.visited[start] = true
	for len(f.stack) > 0 {
		i := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]

		p := PointFromIndex(i)
		group.Stones = append(group.Stones, p)

		f.adj = p.neighbors(f.adj[:0])
		for _, n := range f.adj {
			ni := n.Index()
			switch grid[ni] {
			case Empty:
				if f.libMark[ni] != f.stamp {
					f.libMark[ni] = f.stamp
					group.Liberties++
				}
			case color:
				if !f.visited[ni] {
					f.visited[ni] = true
					f.stack = append(f.stack, ni)
				}
			}
		}
	}
	return group
}

// FindGroups partitions every stone on the grid into groups, in index order of
// each group's first stone. The traversal is iterative so a full board never
// grows the call stack.
func FindGroups(grid *Grid) []Group {
	var f floodState
	groups := make([]Group, 0, 16)
	for i := 0; i < Cells; i++ {
		if grid[i] == Empty || f.visited[i] {
			continue
		}
		groups = append(groups, f.flood(grid, i))
	}
	return groups
}

// GroupAt returns the group containing the stone at p, or false when p is empty.
func GroupAt(grid *Grid, p Point) (Group, bool) {
	if !p.OnBoard() || grid.At(p) == Empty {
		return Group{}, false
	}
	var f floodState
	return f.flood(grid, p.Index()), true
}

func countStones(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Stones)
	}
	return n
}
