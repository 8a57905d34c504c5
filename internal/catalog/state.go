package catalog

import "slices"

// State is the serializable form of a Catalog.
type State struct {
	Templates map[Tier][]Template `json:"taskTemplates,omitempty" yaml:"taskTemplates,omitempty"`
	Custom    map[Tier][]Template `json:"customTasks,omitempty" yaml:"customTasks,omitempty"`
	Hidden    map[Tier][]string   `json:"hiddenTasks,omitempty" yaml:"hiddenTasks,omitempty"`
	Order     map[Tier][]string   `json:"taskOrder,omitempty" yaml:"taskOrder,omitempty"`
}

// State returns a deep copy of the catalog's content and overlays.
func (c *Catalog) State() State {
	return State{
		Templates: cloneTemplates(c.builtin),
		Custom:    cloneTemplates(c.custom),
		Hidden:    cloneNames(c.hidden),
		Order:     cloneNames(c.order),
	}
}

// FromState rebuilds a catalog. A nil Templates map means the state predates
// template overrides, so the shipped set is used. Unknown tier keys are dropped.
// Empty tiers are left empty; call Recover to refill them.
func FromState(s State) *Catalog {
	c := empty()
	if s.Templates == nil {
		for _, t := range Tiers() {
			c.builtin[t] = DefaultTemplates(t)
		}
	} else {
		c.builtin = cloneTemplates(s.Templates)
	}
	c.custom = cloneTemplates(s.Custom)
	c.hidden = cloneNames(s.Hidden)
	c.order = cloneNames(s.Order)
	return c
}

func cloneTemplates(in map[Tier][]Template) map[Tier][]Template {
	out := map[Tier][]Template{}
	for tier, list := range in {
		if !tier.IsValid() || len(list) == 0 {
			continue
		}
		out[tier] = slices.Clone(list)
	}
	return out
}

func cloneNames(in map[Tier][]string) map[Tier][]string {
	out := map[Tier][]string{}
	for tier, list := range in {
		if !tier.IsValid() || len(list) == 0 {
			continue
		}
		out[tier] = slices.Clone(list)
	}
	return out
}
