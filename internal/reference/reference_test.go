package reference_test

import (
	"os"
	"path/filepath"
	"testing"

	"nutri-go/internal/nutri"
	"nutri-go/internal/reference"
)

func TestBuiltin(t *testing.T) {
	tables := reference.Builtin()

	if got := len(tables.Foods); got != 30 {
		t.Errorf("len(Foods) = %d, want 30", got)
	}
	if tables.Fallback.Name != reference.FallbackName {
		t.Errorf("Fallback.Name = %q, want %q", tables.Fallback.Name, reference.FallbackName)
	}
	if !tables.Fallback.Nutrients.IsZero() {
		t.Errorf("Fallback.Nutrients = %+v, want zero", tables.Fallback.Nutrients)
	}
	if got := len(tables.Profiles); got != 3 {
		t.Errorf("len(Profiles) = %d, want 3", got)
	}

	t.Run("returns independent copies", func(t *testing.T) {
		a := reference.Builtin()
		a.Foods[0].Ingredients[0] = "changed"
		b := reference.Builtin()
		if b.Foods[0].Ingredients[0] != "雞腿" {
			t.Errorf("Builtin() shares ingredient slices between calls")
		}
	})

	t.Run("detectable excludes fallback", func(t *testing.T) {
		ref := tables.Reference()
		for _, n := range ref.Foods.Detectable() {
			if n == reference.FallbackName {
				t.Fatalf("Detectable() contains %q", n)
			}
		}
		if got := len(ref.Foods.Detectable()); got != 29 {
			t.Errorf("len(Detectable()) = %d, want 29", got)
		}
	})

	t.Run("warfarin rule", func(t *testing.T) {
		ref := tables.Reference()
		rule, ok := ref.Drugs.Resolve("Warfarin")
		if !ok {
			t.Fatal("Warfarin rule missing")
		}
		if rule.FoodTags["高麗菜"] != nutri.RiskHigh {
			t.Errorf("FoodTags[高麗菜] = %q, want high", rule.FoodTags["高麗菜"])
		}
		if rule.FoodTags["花椰菜"] != nutri.RiskMedium {
			t.Errorf("FoodTags[花椰菜] = %q, want medium", rule.FoodTags["花椰菜"])
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns builtin", func(t *testing.T) {
		tables, err := reference.Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(tables.Foods) != len(reference.Builtin().Foods) {
			t.Errorf("len(Foods) = %d, want builtin count", len(tables.Foods))
		}
	})

	t.Run("merges overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reference.toml")
		content := `
tips = ["Eat slowly."]

[[foods]]
name = "香蕉"
ingredients = ["香蕉", "蜂蜜"]
[foods.nutrients]
calories = 120

[[foods]]
name = "菠菜湯"
ingredients = ["菠菜"]
[foods.nutrients]
calories = 30
sodium = 400

[[drugs]]
name = "Aspirin"
[drugs.drugs]
Warfarin = "high"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		tables, err := reference.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		ref := tables.Reference()

		banana, ok := ref.Foods.Resolve("香蕉")
		if !ok || banana.Nutrients.Calories != 120 || len(banana.Ingredients) != 2 {
			t.Errorf("Resolve(香蕉) = %+v, %v, want replaced record", banana, ok)
		}
		if _, ok := ref.Foods.Resolve("菠菜湯"); !ok {
			t.Error("new food 菠菜湯 not added")
		}
		if got := len(tables.Foods); got != 31 {
			t.Errorf("len(Foods) = %d, want 31", got)
		}
		if rule, ok := ref.Drugs.Resolve("Aspirin"); !ok || rule.Drugs["Warfarin"] != nutri.RiskHigh {
			t.Errorf("Resolve(Aspirin) = %+v, %v", rule, ok)
		}
		if _, ok := ref.Drugs.Resolve("Warfarin"); !ok {
			t.Error("builtin Warfarin rule dropped by merge")
		}
		if len(tables.Tips) != 1 || tables.Tips[0] != "Eat slowly." {
			t.Errorf("Tips = %v, want override", tables.Tips)
		}
		if len(tables.Profiles) != 3 {
			t.Errorf("len(Profiles) = %d, want builtin profiles kept", len(tables.Profiles))
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reference.toml")
		if err := os.WriteFile(path, []byte("colour = \"blue\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := reference.Load(path); err == nil {
			t.Error("Load() expected error for unknown key")
		}
	})

	t.Run("rejects nameless food", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reference.toml")
		if err := os.WriteFile(path, []byte("[[foods]]\ningredients = [\"x\"]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := reference.Load(path); err == nil {
			t.Error("Load() expected error for food without name")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := reference.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("Load() expected error for missing file")
		}
	})
}
