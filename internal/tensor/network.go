package tensor

import "fmt"

// ComputePath returns a pairwise contraction order for the given tensors,
// chosen greedily to minimize the size of each intermediate. Each path entry
// names two positions in the current tensor list; the contracted result is
// appended at the end of the list and the operands are removed, so the path
// can be replayed against any tensors with the same labels and dims.
func ComputePath(tensors []*Tensor) [][2]int {
	type meta struct {
		labels map[string]int // label -> dim
	}
	live := make([]*meta, len(tensors))
	for i, t := range tensors {
		m := &meta{labels: make(map[string]int, len(t.Labels))}
		for k, l := range t.Labels {
			m.labels[l] = t.Dims[k]
		}
		live[i] = m
	}

	resultSize := func(a, b *meta) int {
		size := 1
		for l, d := range a.labels {
			if _, shared := b.labels[l]; !shared {
				size *= d
			}
		}
		for l, d := range b.labels {
			if _, shared := a.labels[l]; !shared {
				size *= d
			}
		}
		return size
	}

	var path [][2]int
	for len(live) > 1 {
		bestI, bestJ, bestSize := 0, 1, -1
		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				size := resultSize(live[i], live[j])
				if bestSize < 0 || size < bestSize {
					bestI, bestJ, bestSize = i, j, size
				}
			}
		}
		path = append(path, [2]int{bestI, bestJ})

		merged := &meta{labels: make(map[string]int)}
		for l, d := range live[bestI].labels {
			if _, shared := live[bestJ].labels[l]; !shared {
				merged.labels[l] = d
			}
		}
		for l, d := range live[bestJ].labels {
			if _, shared := live[bestI].labels[l]; !shared {
				merged.labels[l] = d
			}
		}
		live = append(live[:bestJ], live[bestJ+1:]...)
		live = append(live[:bestI], live[bestI+1:]...)
		live = append(live, merged)
	}
	return path
}

// ContractNetwork contracts a list of tensors to a single tensor by replaying
// a precomputed path.
func ContractNetwork(tensors []*Tensor, path [][2]int) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("tensor: empty network")
	}
	live := append([]*Tensor{}, tensors...)
	for _, step := range path {
		i, j := step[0], step[1]
		if i > j {
			i, j = j, i
		}
		if j >= len(live) {
			return nil, fmt.Errorf("tensor: path step (%d,%d) out of range for %d tensors", i, j, len(live))
		}
		contracted, err := Contract(live[i], live[j])
		if err != nil {
			return nil, err
		}
		live = append(live[:j], live[j+1:]...)
		live = append(live[:i], live[i+1:]...)
		live = append(live, contracted)
	}
	if len(live) != 1 {
		return nil, fmt.Errorf("tensor: path left %d tensors uncontracted", len(live))
	}
	return live[0], nil
}
