package spatial

import (
	"fmt"
	"math"

	"github.com/TFMV/gravmesh/graph"
)

// cellKey addresses one cubical cell of the grid.
type cellKey struct {
	x, y, z int32
}

// UniformGrid buckets nodes into cubical cells of a fixed size. Build is
// O(n); NodesNear scans only the cells that can intersect the query sphere,
// so average query cost is proportional to local density rather than total
// node count.
type UniformGrid struct {
	cellSize    float64
	invCellSize float64
	queryRadius float64
	cells       map[cellKey][]*graph.Node
}

// NewUniformGrid creates a grid with the given cell size. queryRadius is the
// neighborhood used by Repulsion; nodes farther than that exert no force
// through this index, which is the approximation the grid trades for speed.
func NewUniformGrid(cellSize, queryRadius float64) (*UniformGrid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial: cell size must be positive, got %v", cellSize)
	}
	if queryRadius <= 0 {
		return nil, fmt.Errorf("spatial: query radius must be positive, got %v", queryRadius)
	}
	return &UniformGrid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		queryRadius: queryRadius,
		cells:       make(map[cellKey][]*graph.Node),
	}, nil
}

// Rebuild reassigns every node to the cell containing its position.
func (g *UniformGrid) Rebuild(nodes []*graph.Node) {
	g.cells = make(map[cellKey][]*graph.Node, len(g.cells))
	for _, n := range nodes {
		key := g.keyFor(n.Position)
		g.cells[key] = append(g.cells[key], n)
	}
}

func (g *UniformGrid) keyFor(p graph.Vector3) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X * g.invCellSize)),
		y: int32(math.Floor(p.Y * g.invCellSize)),
		z: int32(math.Floor(p.Z * g.invCellSize)),
	}
}

// NodesNear returns every indexed node within radius of p. The cell scan
// range widens to ceil(radius/cellSize) per axis, so the result is exact for
// any radius, not just radii under one cell width.
func (g *UniformGrid) NodesNear(p graph.Vector3, radius float64) []*graph.Node {
	if radius <= 0 {
		return nil
	}
	center := g.keyFor(p)
	reach := int32(math.Ceil(radius * g.invCellSize))

	var out []*graph.Node
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				key := cellKey{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				for _, n := range g.cells[key] {
					if n.Position.DistanceTo(p) <= radius {
						out = append(out, n)
					}
				}
			}
		}
	}
	return out
}

// Repulsion sums pair repulsion from every node within the query radius of
// n. Far-field contributions are dropped entirely; that is the grid's
// accepted approximation.
func (g *UniformGrid) Repulsion(n *graph.Node, k, strength float64) graph.Vector3 {
	var total graph.Vector3
	for _, other := range g.NodesNear(n.Position, g.queryRadius) {
		if other == n {
			continue
		}
		total = total.Add(PairRepulsion(n.Position, other.Position, 1, k, strength))
	}
	return total
}
