package domain

// Combo groups one or more RouteParts considered together as one route
// skeleton. It only lives for the duration of a search run.
type Combo struct {
	Parts              []*RoutePart
	LowerBoundDistance float64
}

// NewCombo builds a combo from the given parts, summing their lower bounds.
func NewCombo(parts ...*RoutePart) Combo {
	c := Combo{Parts: make([]*RoutePart, 0, len(parts))}
	for _, p := range parts {
		c.Add(p)
	}
	return c
}

// Add appends a part and accumulates its lower bound distance.
func (c *Combo) Add(p *RoutePart) {
	c.Parts = append(c.Parts, p)
	c.LowerBoundDistance += p.LowerBoundDistance
}

// Points returns the coordinates of every part in part order.
func (c Combo) Points() []Coordinates {
	n := 0
	for _, p := range c.Parts {
		n += len(p.Points)
	}
	out := make([]Coordinates, 0, n)
	for _, p := range c.Parts {
		for _, gp := range p.Points {
			out = append(out, gp.Coordinates)
		}
	}
	return out
}
