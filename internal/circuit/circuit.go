package circuit

// Moment is a set of gates that act at the same time step. A qubit is
// addressed at most once per moment.
type Moment []Gate

// Circuit is an ordered sequence of moments.
type Circuit struct {
	Moments []Moment
}

// New builds a circuit from the given moments.
func New(moments ...Moment) *Circuit {
	c := &Circuit{Moments: make([]Moment, len(moments))}
	for i, m := range moments {
		c.Moments[i] = append(Moment(nil), m...)
	}
	return c
}

// FromGates builds a circuit by packing gates sequentially into moments: a
// gate joins the last moment unless that moment already addresses one of its
// qubits, in which case a new moment is started.
func FromGates(gates ...Gate) *Circuit {
	c := &Circuit{}
	c.appendGates(gates)
	return c
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	return New(c.Moments...)
}

// NumMoments returns the number of moments in the circuit.
func (c *Circuit) NumMoments() int {
	return len(c.Moments)
}

// QubitSet returns the set of qubits addressed by the circuit.
func (c *Circuit) QubitSet() map[Qubit]struct{} {
	set := make(map[Qubit]struct{})
	for _, m := range c.Moments {
		for _, g := range m {
			for _, q := range g.Qubits {
				set[q] = struct{}{}
			}
		}
	}
	return set
}

// AllQubits returns the qubits addressed by the circuit in canonical order.
func (c *Circuit) AllQubits() []Qubit {
	set := c.QubitSet()
	qubits := make([]Qubit, 0, len(set))
	for q := range set {
		qubits = append(qubits, q)
	}
	SortQubits(qubits)
	return qubits
}

// HasQubitBefore reports whether any operation strictly before momentIndex
// addresses q.
func (c *Circuit) HasQubitBefore(q Qubit, momentIndex int) bool {
	if momentIndex > len(c.Moments) {
		momentIndex = len(c.Moments)
	}
	for _, m := range c.Moments[:momentIndex] {
		for _, g := range m {
			if g.Addresses(q) {
				return true
			}
		}
	}
	return false
}

// appendGates packs gates into the tail of the circuit, starting new moments
// on qubit collisions.
func (c *Circuit) appendGates(gates []Gate) {
	for _, g := range gates {
		placed := false
		// A gate may join the last moment only if the moment is free on all
		// of the gate's qubits and no earlier gate ordering is violated; the
		// simple collision rule is sufficient because gates arrive in order.
		if n := len(c.Moments); n > 0 {
			last := c.Moments[n-1]
			collision := false
			for _, q := range g.Qubits {
				for _, existing := range last {
					if existing.Addresses(q) {
						collision = true
						break
					}
				}
				if collision {
					break
				}
			}
			if !collision {
				c.Moments[n-1] = append(last, g)
				placed = true
			}
		}
		if !placed {
			c.Moments = append(c.Moments, Moment{g})
		}
	}
}

// WithPrefixOps returns a new circuit with the given gates packed into moments
// before the existing ones. Gate order is preserved.
func (c *Circuit) WithPrefixOps(gates []Gate) *Circuit {
	prefix := FromGates(gates...)
	out := &Circuit{Moments: make([]Moment, 0, len(prefix.Moments)+len(c.Moments))}
	out.Moments = append(out.Moments, prefix.Moments...)
	for _, m := range c.Moments {
		out.Moments = append(out.Moments, append(Moment(nil), m...))
	}
	return out
}

// WithSuffixOps returns a new circuit with the given gates packed into moments
// after the existing ones.
func (c *Circuit) WithSuffixOps(gates []Gate) *Circuit {
	out := c.Clone()
	suffix := FromGates(gates...)
	out.Moments = append(out.Moments, suffix.Moments...)
	return out
}

// Factorize splits the circuit into maximal connected sub-circuits. Two gates
// are connected if they share a qubit, transitively. Factors preserve the
// moment structure of the parent circuit and are returned in canonical order
// of their smallest qubit.
func (c *Circuit) Factorize() []*Circuit {
	qubits := c.AllQubits()
	if len(qubits) == 0 {
		return nil
	}

	// union-find over qubit positions
	index := make(map[Qubit]int, len(qubits))
	for i, q := range qubits {
		index[q] = i
	}
	parent := make([]int, len(qubits))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}
	for _, m := range c.Moments {
		for _, g := range m {
			for i := 1; i < len(g.Qubits); i++ {
				union(index[g.Qubits[0]], index[g.Qubits[i]])
			}
		}
	}

	// group qubits by component root, keeping canonical qubit order
	componentOf := make(map[int]int) // root -> factor position
	var factors []*Circuit
	for i := range qubits {
		root := find(i)
		if _, seen := componentOf[root]; !seen {
			componentOf[root] = len(factors)
			factors = append(factors, &Circuit{Moments: make([]Moment, len(c.Moments))})
		}
	}
	for mi, m := range c.Moments {
		for _, g := range m {
			fi := componentOf[find(index[g.Qubits[0]])]
			factors[fi].Moments[mi] = append(factors[fi].Moments[mi], g)
		}
	}
	return factors
}
