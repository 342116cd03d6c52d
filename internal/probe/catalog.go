package probe

import (
	"fmt"
)

// Catalog is a validated, immutable set of probes with a dependency partial
// order. Construction is the only place contract violations (duplicate names,
// unknown predecessors, cycles) can surface; execution never fails on them.
type Catalog struct {
	probes  []Probe
	byName  map[string]Probe
	batches [][]Probe
}

// NewCatalog validates the probe set and precomputes dependency batches.
func NewCatalog(probes ...Probe) (*Catalog, error) {
	byName := make(map[string]Probe, len(probes))
	for _, p := range probes {
		if p.Name == "" {
			return nil, fmt.Errorf("probe with empty name in catalog")
		}
		if p.Classify == nil {
			return nil, fmt.Errorf("probe %q has no classifier", p.Name)
		}
		if _, exists := byName[p.Name]; exists {
			return nil, fmt.Errorf("duplicate probe name %q", p.Name)
		}
		byName[p.Name] = p
	}
	for _, p := range probes {
		for _, dep := range p.Requires {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("probe %q requires unknown probe %q", p.Name, dep)
			}
			if dep == p.Name {
				return nil, fmt.Errorf("probe %q requires itself", p.Name)
			}
		}
	}

	batches, err := computeBatches(probes)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		probes:  append([]Probe(nil), probes...),
		byName:  byName,
		batches: batches,
	}, nil
}

// Probes returns the probes in declaration order.
func (c *Catalog) Probes() []Probe {
	return append([]Probe(nil), c.probes...)
}

// Len returns the number of probes in the catalog.
func (c *Catalog) Len() int {
	return len(c.probes)
}

// OrderedBatches groups probes into dependency-respecting batches. Every
// probe appears in exactly one batch, and all of a probe's predecessors
// appear in earlier batches. Probes within one batch are independent and may
// run concurrently.
func (c *Catalog) OrderedBatches() [][]Probe {
	out := make([][]Probe, len(c.batches))
	for i, b := range c.batches {
		out[i] = append([]Probe(nil), b...)
	}
	return out
}

// SelectCategories derives a sub-catalog containing only probes of the given
// categories. Predecessor references to probes outside the selection are
// pruned, so the subset runs unconditionally where its prerequisites were cut
// away (e.g. the connectivity batch run without the tooling batch).
func (c *Catalog) SelectCategories(categories ...Category) *Catalog {
	keep := make(map[Category]bool, len(categories))
	for _, cat := range categories {
		keep[cat] = true
	}

	selected := make(map[string]bool)
	var subset []Probe
	for _, p := range c.probes {
		if keep[p.Category] {
			selected[p.Name] = true
			subset = append(subset, p)
		}
	}
	for i := range subset {
		var requires []string
		for _, dep := range subset[i].Requires {
			if selected[dep] {
				requires = append(requires, dep)
			}
		}
		subset[i].Requires = requires
	}

	// The parent catalog already validated names and acyclicity; a pruned
	// subset cannot reintroduce either violation.
	sub, err := NewCatalog(subset...)
	if err != nil {
		panic(fmt.Sprintf("internal: subset of valid catalog failed validation: %v", err))
	}
	return sub
}

// computeBatches performs a Kahn-style level decomposition. Probes whose
// predecessors are all resolved form the next batch; leftovers mean a cycle.
func computeBatches(probes []Probe) ([][]Probe, error) {
	remaining := make(map[string]Probe, len(probes))
	order := make([]string, 0, len(probes))
	for _, p := range probes {
		remaining[p.Name] = p
		order = append(order, p.Name)
	}

	resolved := make(map[string]bool, len(probes))
	var batches [][]Probe

	for len(remaining) > 0 {
		var batch []Probe
		for _, name := range order {
			p, ok := remaining[name]
			if !ok {
				continue
			}
			ready := true
			for _, dep := range p.Requires {
				if !resolved[dep] {
					ready = false
					break
				}
			}
			if ready {
				batch = append(batch, p)
			}
		}

		if len(batch) == 0 {
			var stuck []string
			for _, name := range order {
				if _, ok := remaining[name]; ok {
					stuck = append(stuck, name)
				}
			}
			return nil, fmt.Errorf("dependency cycle among probes: %v", stuck)
		}

		for _, p := range batch {
			resolved[p.Name] = true
			delete(remaining, p.Name)
		}
		batches = append(batches, batch)
	}

	return batches, nil
}
