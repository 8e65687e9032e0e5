package resolver

// disjointSet is a union-find over dense int ids with union by rank and path
// halving. find is iterative so deep chains cannot exhaust the stack.
type disjointSet struct {
	parent []int
	rank   []uint8
}

func newDisjointSet(capacity int) *disjointSet {
	return &disjointSet{
		parent: make([]int, 0, capacity),
		rank:   make([]uint8, 0, capacity),
	}
}

// add registers a new singleton and returns its id.
func (d *disjointSet) add() int {
	id := len(d.parent)
	d.parent = append(d.parent, id)
	d.rank = append(d.rank, 0)
	return id
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}

func (d *disjointSet) size() int {
	return len(d.parent)
}
