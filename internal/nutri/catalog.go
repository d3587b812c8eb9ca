package nutri

import (
	"slices"
	"strings"
)

// FoodCatalog resolves food names to reference records.
// Names that are not in the table resolve to the fallback record, which
// carries zero nutrients; Resolve reports that case with ok=false.
type FoodCatalog struct {
	items    map[string]ReferenceFood
	order    []string
	fallback ReferenceFood
}

// NewFoodCatalog builds a catalog from foods in table order. fallback is the
// record returned for unknown names; if it also appears in foods it is
// excluded from Detectable.
func NewFoodCatalog(foods []ReferenceFood, fallback ReferenceFood) *FoodCatalog {
	c := &FoodCatalog{
		items:    make(map[string]ReferenceFood, len(foods)),
		fallback: cloneFood(fallback),
	}
	for _, f := range foods {
		if _, dup := c.items[f.Name]; !dup {
			c.order = append(c.order, f.Name)
		}
		c.items[f.Name] = cloneFood(f)
	}
	return c
}

// Resolve returns the record for name, or the fallback record and false.
func (c *FoodCatalog) Resolve(name string) (ReferenceFood, bool) {
	if f, ok := c.items[name]; ok {
		return cloneFood(f), true
	}
	return cloneFood(c.fallback), false
}

// Names returns all food names in table order.
func (c *FoodCatalog) Names() []string {
	return slices.Clone(c.order)
}

// Detectable returns the names the analyzer may report: every name except the fallback.
func (c *FoodCatalog) Detectable() []string {
	out := make([]string, 0, len(c.order))
	for _, n := range c.order {
		if n != c.fallback.Name {
			out = append(out, n)
		}
	}
	return out
}

// Search returns records whose name contains query, in table order.
// An empty query matches everything.
func (c *FoodCatalog) Search(query string) []ReferenceFood {
	var out []ReferenceFood
	for _, n := range c.order {
		if strings.Contains(n, query) {
			out = append(out, cloneFood(c.items[n]))
		}
	}
	return out
}

// Fallback returns the record used for unknown names.
func (c *FoodCatalog) Fallback() ReferenceFood {
	return cloneFood(c.fallback)
}

func cloneFood(f ReferenceFood) ReferenceFood {
	f.Ingredients = slices.Clone(f.Ingredients)
	return f
}

// DrugCatalog resolves medication names to interaction rules.
// Unknown names resolve to an empty rule, which produces no warnings.
type DrugCatalog struct {
	rules map[string]DrugRule
}

// NewDrugCatalog builds a catalog keyed by DrugRule.Name.
func NewDrugCatalog(rules []DrugRule) *DrugCatalog {
	c := &DrugCatalog{rules: make(map[string]DrugRule, len(rules))}
	for _, r := range rules {
		c.rules[r.Name] = r
	}
	return c
}

// Resolve returns the rule for name, or an empty rule and false.
func (c *DrugCatalog) Resolve(name string) (DrugRule, bool) {
	r, ok := c.rules[name]
	if !ok {
		return DrugRule{Name: name}, false
	}
	return r, true
}

// Len returns the number of rules.
func (c *DrugCatalog) Len() int {
	return len(c.rules)
}
