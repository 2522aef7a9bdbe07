package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyRegistryDegradesGracefully(t *testing.T) {
	r := Empty()
	if r.IsTransitive("LOCATED_IN") {
		t.Fatalf("expected an unregistered relation to be non-transitive by default")
	}
	if r.IsInheritable("LOCATED_IN") {
		t.Fatalf("expected an unregistered relation to be non-inheritable by default")
	}
	if _, ok := r.GetAxisIndex("color"); ok {
		t.Fatalf("expected GetAxisIndex to report absent on an empty registry")
	}
	if got := r.GetIsAVariants(); len(got) != 1 || got[0] != "IS_A" {
		t.Fatalf("expected GetIsAVariants to always include bare IS_A, got %v", got)
	}
}

func TestLoadDimensionRegistryParsesDocument(t *testing.T) {
	doc := `
axes:
  color: 0
  weight: 1
properties:
  red: 0
relations:
  LOCATED_IN:
    transitive: true
    inheritable: true
    positioning_axes: [0, 1]
  IS_A_CERTAIN:
    is_a_variant: true
partitions:
  ontology: [0, 511]
`
	path := filepath.Join(t.TempDir(), "dims.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := LoadDimensionRegistry(path)
	if err != nil {
		t.Fatalf("LoadDimensionRegistry: %v", err)
	}
	if !r.IsTransitive("LOCATED_IN") {
		t.Errorf("expected LOCATED_IN to be transitive")
	}
	if !r.IsInheritable("LOCATED_IN") {
		t.Errorf("expected LOCATED_IN to be inheritable")
	}
	if axes := r.GetRelationAxes("LOCATED_IN"); len(axes) != 2 || axes[0] != 0 || axes[1] != 1 {
		t.Errorf("expected positioning axes [0 1], got %v", axes)
	}
	if idx, ok := r.GetAxisIndex("weight"); !ok || idx != 1 {
		t.Errorf("expected weight axis 1, got %d, %v", idx, ok)
	}
	if idx, ok := r.GetPropertyAxis("red"); !ok || idx != 0 {
		t.Errorf("expected red property axis 0, got %d, %v", idx, ok)
	}
	if rng, ok := r.PartitionRange("ontology"); !ok || rng != [2]int{0, 511} {
		t.Errorf("expected ontology partition [0 511], got %v, %v", rng, ok)
	}
	if !r.IsIsAVariant("IS_A_CERTAIN") || !r.IsIsAVariant("IS_A") {
		t.Errorf("expected both IS_A and IS_A_CERTAIN to report as IS_A variants")
	}
	variants := r.GetIsAVariants()
	if len(variants) != 2 {
		t.Errorf("expected 2 registered IS_A variants (IS_A + IS_A_CERTAIN), got %v", variants)
	}
}

func TestLoadDimensionRegistryDegradesOnMissingFile(t *testing.T) {
	r, err := LoadDimensionRegistry(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing dimension document")
	}
	if r == nil {
		t.Fatalf("expected a non-nil degraded registry even on error")
	}
	if r.IsTransitive("ANYTHING") {
		t.Errorf("expected the degraded registry to be empty")
	}
}

func TestLoadDimensionRegistryDegradesOnMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("axes: [this is not a map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r, err := LoadDimensionRegistry(path)
	if err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
	if _, ok := r.GetAxisIndex("color"); ok {
		t.Errorf("expected the degraded registry to have no axes")
	}
}
