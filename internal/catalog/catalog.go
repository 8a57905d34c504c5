package catalog

import (
	"fmt"
	"slices"
)

// Catalog merges built-in and custom templates per tier and applies the hidden
// and order overlays. Built-in definitions are never removed by hiding; the
// hidden set only controls visibility.
type Catalog struct {
	builtin map[Tier][]Template
	custom  map[Tier][]Template
	hidden  map[Tier][]string
	order   map[Tier][]string
}

// New returns a catalog seeded with the shipped templates and no overlays.
func New() *Catalog {
	c := empty()
	for _, t := range Tiers() {
		c.builtin[t] = DefaultTemplates(t)
	}
	return c
}

func empty() *Catalog {
	return &Catalog{
		builtin: map[Tier][]Template{},
		custom:  map[Tier][]Template{},
		hidden:  map[Tier][]string{},
		order:   map[Tier][]string{},
	}
}

func indexOf(list []Template, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}

// Resolve finds a template by exact name, built-ins first.
func (c *Catalog) Resolve(tier Tier, name string) (Template, error) {
	if i := indexOf(c.builtin[tier], name); i >= 0 {
		return c.builtin[tier][i], nil
	}
	if i := indexOf(c.custom[tier], name); i >= 0 {
		return c.custom[tier][i], nil
	}
	return Template{}, fmt.Errorf("template %s/%q: %w", tier, name, ErrNotFound)
}

func (c *Catalog) IsBuiltIn(tier Tier, name string) bool {
	return indexOf(c.builtin[tier], name) >= 0
}

func (c *Catalog) IsHidden(tier Tier, name string) bool {
	return slices.Contains(c.hidden[tier], name)
}

// HasCustom reports whether any tier holds a user-created template.
func (c *Catalog) HasCustom() bool {
	for _, list := range c.custom {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

func (c *Catalog) union(tier Tier) []Template {
	all := make([]Template, 0, len(c.builtin[tier])+len(c.custom[tier]))
	all = append(all, c.builtin[tier]...)
	all = append(all, c.custom[tier]...)
	return all
}

// ListVisible returns the tier's templates minus hidden names. Names listed in
// the order overlay come first in that order; the rest follow in catalog order.
func (c *Catalog) ListVisible(tier Tier) []Template {
	var visible []Template
	for _, t := range c.union(tier) {
		if c.IsHidden(tier, t.Name) {
			continue
		}
		visible = append(visible, t)
	}

	order := c.order[tier]
	if len(order) == 0 {
		return visible
	}

	placed := make([]bool, len(visible))
	out := make([]Template, 0, len(visible))
	for _, name := range order {
		for i := range visible {
			if !placed[i] && visible[i].Name == name {
				out = append(out, visible[i])
				placed[i] = true
				break
			}
		}
	}
	for i := range visible {
		if !placed[i] {
			out = append(out, visible[i])
		}
	}
	return out
}

// ListAll returns every template of the tier, hidden ones included.
func (c *Catalog) ListAll(tier Tier) []Entry {
	var out []Entry
	for _, t := range c.builtin[tier] {
		out = append(out, Entry{Template: t, Tier: tier, BuiltIn: true, Hidden: c.IsHidden(tier, t.Name)})
	}
	for _, t := range c.custom[tier] {
		out = append(out, Entry{Template: t, Tier: tier, Hidden: c.IsHidden(tier, t.Name)})
	}
	return out
}

// CreateCustom appends a user-defined template to the tier.
func (c *Catalog) CreateCustom(tier Tier, t Template) error {
	if !tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	t, err := validateTemplate(t)
	if err != nil {
		return err
	}
	c.custom[tier] = append(c.custom[tier], t)
	return nil
}

// DeleteOrHide hides a built-in template or permanently removes a custom one.
func (c *Catalog) DeleteOrHide(tier Tier, name string) error {
	if c.IsBuiltIn(tier, name) {
		if !c.IsHidden(tier, name) {
			c.hidden[tier] = append(c.hidden[tier], name)
		}
		return nil
	}
	i := indexOf(c.custom[tier], name)
	if i < 0 {
		return fmt.Errorf("template %s/%q: %w", tier, name, ErrNotFound)
	}
	c.custom[tier] = slices.Delete(slices.Clone(c.custom[tier]), i, i+1)
	return nil
}

// Unhide makes a hidden template visible again.
func (c *Catalog) Unhide(tier Tier, name string) {
	c.hidden[tier] = slices.DeleteFunc(slices.Clone(c.hidden[tier]), func(n string) bool { return n == name })
	if len(c.hidden[tier]) == 0 {
		delete(c.hidden, tier)
	}
}

// Edit replaces a template's fields. When newTier differs from tier the
// template moves: it is removed from the source list and appended to the
// destination list of the same provenance.
func (c *Catalog) Edit(tier Tier, name string, newTier Tier, t Template) error {
	if !newTier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, newTier)
	}
	t, err := validateTemplate(t)
	if err != nil {
		return err
	}

	lists := c.custom
	if c.IsBuiltIn(tier, name) {
		lists = c.builtin
	}
	i := indexOf(lists[tier], name)
	if i < 0 {
		return fmt.Errorf("template %s/%q: %w", tier, name, ErrNotFound)
	}

	if newTier == tier {
		updated := slices.Clone(lists[tier])
		updated[i] = t
		lists[tier] = updated
	} else {
		lists[tier] = slices.Delete(slices.Clone(lists[tier]), i, i+1)
		lists[newTier] = append(slices.Clone(lists[newTier]), t)
	}
	if newTier != tier || t.Name != name {
		c.carryOverlays(tier, name, newTier, t.Name)
	}
	return nil
}

// carryOverlays moves the hidden flag of name to newName in newTier. A
// same-tier rename keeps its slot in the order overlay; a cross-tier move
// drops it.
func (c *Catalog) carryOverlays(tier Tier, name string, newTier Tier, newName string) {
	if c.IsHidden(tier, name) {
		c.Unhide(tier, name)
		if !c.IsHidden(newTier, newName) {
			c.hidden[newTier] = append(slices.Clone(c.hidden[newTier]), newName)
		}
	}

	j := slices.Index(c.order[tier], name)
	if j < 0 {
		return
	}
	order := slices.Clone(c.order[tier])
	if newTier == tier {
		order[j] = newName
	} else {
		order = slices.Delete(order, j, j+1)
	}
	if len(order) == 0 {
		delete(c.order, tier)
		return
	}
	c.order[tier] = order
}

// Move swaps a template with its neighbour in the visible list and stores the
// resulting name order as the tier's order overlay. Moving past either end is a no-op.
func (c *Catalog) Move(tier Tier, name string, dir Direction) error {
	visible := c.ListVisible(tier)
	cur := indexOf(visible, name)
	if cur < 0 {
		return fmt.Errorf("template %s/%q: %w", tier, name, ErrNotFound)
	}

	next := cur + 1
	if dir == Up {
		next = cur - 1
	}
	if next < 0 || next >= len(visible) {
		return nil
	}

	names := make([]string, len(visible))
	for i := range visible {
		names[i] = visible[i].Name
	}
	names[cur], names[next] = names[next], names[cur]
	c.order[tier] = names
	return nil
}

// Recover refills tiers whose built-in list is empty with the shipped
// templates. It is meant to run once after load, not after every edit.
func (c *Catalog) Recover() []Tier {
	var restored []Tier
	for _, t := range Tiers() {
		if len(c.builtin[t]) == 0 {
			c.builtin[t] = DefaultTemplates(t)
			restored = append(restored, t)
		}
	}
	return restored
}

// ResetCustom drops every user-created template.
func (c *Catalog) ResetCustom() {
	c.custom = map[Tier][]Template{}
}
