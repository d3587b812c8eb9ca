// Package reference provides the static food, drug and profile tables the
// rules engine evaluates against, with optional overrides from a TOML file.
package reference

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"nutri-go/internal/nutri"
)

// Tables holds every reference table.
type Tables struct {
	Foods    []nutri.ReferenceFood `toml:"foods"`
	Fallback nutri.ReferenceFood   `toml:"fallback"`
	Drugs    []nutri.DrugRule      `toml:"drugs"`
	Profiles []nutri.Profile       `toml:"profiles"`
	Tips     []string              `toml:"tips"`
}

// Builtin returns a fresh copy of the built-in tables.
func Builtin() Tables {
	return Tables{
		Foods:    builtinFoods(),
		Fallback: builtinFallback(),
		Drugs:    builtinDrugs(),
		Profiles: builtinProfiles(),
		Tips:     slices.Clone(nutri.DefaultTips),
	}
}

// Reference builds the catalogs the service consumes.
func (t Tables) Reference() nutri.Reference {
	return nutri.Reference{
		Foods:    nutri.NewFoodCatalog(t.Foods, t.Fallback),
		Drugs:    nutri.NewDrugCatalog(t.Drugs),
		Profiles: slices.Clone(t.Profiles),
		Tips:     slices.Clone(t.Tips),
	}
}

// Load returns the built-in tables with the overrides from path applied.
// An empty path returns the built-in tables unchanged.
func Load(path string) (Tables, error) {
	tables := Builtin()
	if path == "" {
		return tables, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Tables{}, fmt.Errorf("opening reference file: %w", err)
	}
	defer f.Close()

	var override Tables
	md, err := toml.NewDecoder(f).Decode(&override)
	if err != nil {
		return Tables{}, fmt.Errorf("decoding reference file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Tables{}, fmt.Errorf("reference file %s: unknown keys %v", path, undecoded)
	}

	if err := tables.Merge(override); err != nil {
		return Tables{}, fmt.Errorf("reference file %s: %w", path, err)
	}
	return tables, nil
}

// Merge applies o onto t. Foods and drugs replace records with the same
// name and append new ones. A non-empty fallback name replaces the
// fallback. Non-empty profile and tip lists replace t's lists.
func (t *Tables) Merge(o Tables) error {
	for _, f := range o.Foods {
		if f.Name == "" {
			return errors.New("food record without a name")
		}
		if i := slices.IndexFunc(t.Foods, func(x nutri.ReferenceFood) bool { return x.Name == f.Name }); i >= 0 {
			t.Foods[i] = f
		} else {
			t.Foods = append(t.Foods, f)
		}
	}
	for _, d := range o.Drugs {
		if d.Name == "" {
			return errors.New("drug rule without a name")
		}
		if i := slices.IndexFunc(t.Drugs, func(x nutri.DrugRule) bool { return x.Name == d.Name }); i >= 0 {
			t.Drugs[i] = d
		} else {
			t.Drugs = append(t.Drugs, d)
		}
	}
	if o.Fallback.Name != "" {
		t.Fallback = o.Fallback
	}
	if len(o.Profiles) > 0 {
		t.Profiles = o.Profiles
	}
	if len(o.Tips) > 0 {
		t.Tips = o.Tips
	}
	return nil
}
