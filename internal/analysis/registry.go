package analysis

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the read-only, ordered analysis catalogue
type Registry struct {
	definitions []Definition
	index       map[string]int
}

// Selection restricts a run to a subset of the catalogue.
// IDs and Categories are OR-ed; an empty selection matches everything.
// Categories match either a category or a subcategory name.
type Selection struct {
	IDs        []string `json:"ids,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Empty reports whether the selection matches everything
func (s Selection) Empty() bool {
	return len(s.IDs) == 0 && len(s.Categories) == 0
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in catalogue in tier order
func Default() *Registry {
	defaultOnce.Do(func() {
		var defs []Definition
		defs = append(defs, structuralDefinitions()...)
		defs = append(defs, liquidityDefinitions()...)
		defs = append(defs, activityDefinitions()...)
		defs = append(defs, profitabilityDefinitions()...)
		defs = append(defs, leverageDefinitions()...)
		defs = append(defs, marketDefinitions()...)
		defs = append(defs, cashFlowDefinitions()...)
		defs = append(defs, comparisonDefinitions()...)
		defs = append(defs, valuationDefinitions()...)
		defs = append(defs, performanceDefinitions()...)
		defs = append(defs, modelingDefinitions()...)
		defs = append(defs, statisticalDefinitions()...)
		defs = append(defs, forecastingDefinitions()...)
		defs = append(defs, quantRiskDefinitions()...)
		defs = append(defs, portfolioDefinitions()...)
		defs = append(defs, mergersDefinitions()...)
		defs = append(defs, detectionDefinitions()...)
		defs = append(defs, timeSeriesDefinitions()...)
		defaultRegistry = mustRegistry(defs)
	})
	return defaultRegistry
}

// NewRegistry builds a registry from definitions, filling defaults and
// rejecting duplicate or incomplete entries. Definitions are ordered by tier;
// relative order inside a tier is preserved.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		definitions: make([]Definition, 0, len(defs)),
		index:       make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("definition without id in category %q", d.Category)
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, fmt.Errorf("duplicate definition id %q", d.ID)
		}
		if d.Compute == nil {
			return nil, fmt.Errorf("definition %q has no compute function", d.ID)
		}
		if d.Polarity != HigherIsBetter && d.Polarity != LowerIsBetter {
			return nil, fmt.Errorf("definition %q has no polarity", d.ID)
		}
		if d.Tier == 0 {
			t, ok := tierOf[d.Category]
			if !ok {
				return nil, fmt.Errorf("definition %q has unknown category %q", d.ID, d.Category)
			}
			d.Tier = t
		}
		if d.MinHistory < 1 {
			d.MinHistory = 1
		}
		if d.BenchmarkKey == "" {
			d.BenchmarkKey = d.ID
		}
		if d.Unit == "" {
			d.Unit = UnitRatio
		}
		r.index[d.ID] = len(r.definitions)
		r.definitions = append(r.definitions, d)
	}

	sort.SliceStable(r.definitions, func(i, j int) bool {
		return r.definitions[i].Tier < r.definitions[j].Tier
	})
	for i, d := range r.definitions {
		r.index[d.ID] = i
	}
	return r, nil
}

func mustRegistry(defs []Definition) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(fmt.Sprintf("analysis catalogue: %v", err))
	}
	return r
}

// All returns a copy of every definition in registry order
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Len returns the number of definitions
func (r *Registry) Len() int {
	return len(r.definitions)
}

// Get returns the definition with the given id
func (r *Registry) Get(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.definitions[i], true
}

// Filter returns the definitions matched by sel, in registry order
func (r *Registry) Filter(sel Selection) []Definition {
	if sel.Empty() {
		return r.All()
	}
	ids := make(map[string]bool, len(sel.IDs))
	for _, id := range sel.IDs {
		ids[strings.TrimSpace(id)] = true
	}
	cats := make(map[string]bool, len(sel.Categories))
	for _, c := range sel.Categories {
		cats[strings.ToLower(strings.TrimSpace(c))] = true
	}

	var out []Definition
	for _, d := range r.definitions {
		if ids[d.ID] || cats[string(d.Category)] || cats[string(d.Subcategory)] {
			out = append(out, d)
		}
	}
	return out
}

// Unknown returns the ids in sel that are not in the registry
func (r *Registry) Unknown(sel Selection) []string {
	var missing []string
	for _, id := range sel.IDs {
		if _, ok := r.index[strings.TrimSpace(id)]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// CategoryInfo summarizes one category of the catalogue
type CategoryInfo struct {
	Category      string   `json:"category"`
	Tier          int      `json:"tier"`
	Subcategories []string `json:"subcategories"`
	Count         int      `json:"count"`
}

// Categories lists categories in registry order with their subcategories
func (r *Registry) Categories() []CategoryInfo {
	var out []CategoryInfo
	pos := make(map[Category]int)
	seenSub := make(map[Subcategory]bool)
	for _, d := range r.definitions {
		i, ok := pos[d.Category]
		if !ok {
			i = len(out)
			pos[d.Category] = i
			out = append(out, CategoryInfo{Category: string(d.Category), Tier: int(d.Tier)})
		}
		out[i].Count++
		if !seenSub[d.Subcategory] {
			seenSub[d.Subcategory] = true
			out[i].Subcategories = append(out[i].Subcategories, string(d.Subcategory))
		}
	}
	return out
}

// Baselines returns the generic benchmark of every definition keyed by benchmark key
func (r *Registry) Baselines() map[string]float64 {
	out := make(map[string]float64, len(r.definitions))
	for _, d := range r.definitions {
		out[d.BenchmarkKey] = d.Baseline
	}
	return out
}

// inCategory stamps cat onto every definition of a catalogue table
func inCategory(cat Category, defs []Definition) []Definition {
	for i := range defs {
		defs[i].Category = cat
	}
	return defs
}
