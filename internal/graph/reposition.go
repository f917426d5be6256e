package graph

// EdgePadding is the minimum canvas margin enforced by Reposition.
const EdgePadding = 25

// Reposition shifts every node's coordinates so the minimum x and minimum
// y across the project equal EdgePadding, rounding to integers. Applying
// it twice is a no-op, since the second call computes a shift of exactly
// (EdgePadding, EdgePadding) minus itself.
func Reposition(p *Project) {
	if len(p.Nodes) == 0 {
		return
	}
	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	for _, n := range p.Nodes {
		if n.X < minX {
			minX = n.X
		}
		if n.Y < minY {
			minY = n.Y
		}
	}
	dx := EdgePadding - minX
	dy := EdgePadding - minY
	if dx == 0 && dy == 0 {
		return
	}
	for _, n := range p.Nodes {
		n.X += dx
		n.Y += dy
	}
}
