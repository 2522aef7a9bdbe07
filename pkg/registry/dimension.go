// Package registry holds the Dimension Registry (named axes, relation
// metadata, ontology/axiology partitions) and the Plugin Registry
// (computable-relation evaluator contract). Both degrade gracefully —
// a missing or malformed configuration document never panics; it
// simply yields empty mappings (§4.3, §9).
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RelationProperties describes the metadata the engine and
// contradiction detector need about a relation.
type RelationProperties struct {
	Transitive      bool   `yaml:"transitive"`
	Symmetric       bool   `yaml:"symmetric"`
	Inheritable     bool   `yaml:"inheritable"`
	Positioning     bool   `yaml:"positioning"`
	Inverse         string `yaml:"inverse"`
	Computable      bool   `yaml:"computable"`
	Plugin          string `yaml:"plugin"`
	BaseRelation    string `yaml:"base_relation"`
	ExistenceLevel  int8   `yaml:"existence_level"`
	IsAVariant      bool   `yaml:"is_a_variant"`
	PositioningAxes []int  `yaml:"positioning_axes"`
	TargetValue     *int   `yaml:"target_value"`
}

// dimensionDocument is the on-disk YAML shape.
type dimensionDocument struct {
	Axes       map[string]int                `yaml:"axes"`
	Properties map[string]int                `yaml:"properties"` // property name -> axis index
	Relations  map[string]RelationProperties `yaml:"relations"`
	Partitions map[string][2]int             `yaml:"partitions"` // name -> [lo, hi]
}

// DimensionRegistry is the catalog of named axes, property->axis
// mappings, relation metadata, and ontology/axiology partition
// ranges loaded from a configuration document at session init (§4.3).
type DimensionRegistry struct {
	axes       map[string]int
	properties map[string]int
	relations  map[string]RelationProperties
	partitions map[string][2]int
}

// Empty returns a DimensionRegistry with no mappings — the degraded
// mode used when no configuration file is supplied or it cannot be
// read/parsed.
func Empty() *DimensionRegistry {
	return &DimensionRegistry{
		axes:       map[string]int{},
		properties: map[string]int{},
		relations:  map[string]RelationProperties{},
		partitions: map[string][2]int{},
	}
}

// LoadDimensionRegistry reads and parses a YAML dimension document
// from path. On any error (file missing, unreadable, malformed) it
// logs nothing itself — it returns the empty registry and the error,
// and callers are expected to degrade to Empty() rather than panic.
func LoadDimensionRegistry(path string) (*DimensionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("registry: reading dimension document %q: %w", path, err)
	}
	var doc dimensionDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Empty(), fmt.Errorf("registry: parsing dimension document %q: %w", path, err)
	}
	reg := Empty()
	if doc.Axes != nil {
		reg.axes = doc.Axes
	}
	if doc.Properties != nil {
		reg.properties = doc.Properties
	}
	if doc.Relations != nil {
		reg.relations = doc.Relations
	}
	if doc.Partitions != nil {
		reg.partitions = doc.Partitions
	}
	return reg, nil
}

// GetAxisIndex returns the axis index for name, if registered.
func (r *DimensionRegistry) GetAxisIndex(name string) (int, bool) {
	v, ok := r.axes[name]
	return v, ok
}

// GetPropertyAxis returns the axis index bound to property p.
func (r *DimensionRegistry) GetPropertyAxis(p string) (int, bool) {
	v, ok := r.properties[p]
	return v, ok
}

// GetRelationAxes returns the positioning axes for relation r, if any.
func (r *DimensionRegistry) GetRelationAxes(rel string) []int {
	props, ok := r.relations[rel]
	if !ok {
		return nil
	}
	return props.PositioningAxes
}

// GetRelationProperties returns the full metadata for relation rel.
func (r *DimensionRegistry) GetRelationProperties(rel string) (RelationProperties, bool) {
	props, ok := r.relations[rel]
	return props, ok
}

// IsTransitive reports whether rel is registered as transitive.
func (r *DimensionRegistry) IsTransitive(rel string) bool {
	return r.relations[rel].Transitive
}

// IsInheritable reports whether rel is registered as inheritable.
func (r *DimensionRegistry) IsInheritable(rel string) bool {
	return r.relations[rel].Inheritable
}

// IsIsAVariant reports whether rel is an IS_A variant (IS_A_CERTAIN,
// IS_A_DEMONSTRATED, IS_A_POSSIBLE, IS_A_UNPROVEN, or IS_A itself).
func (r *DimensionRegistry) IsIsAVariant(rel string) bool {
	if rel == "IS_A" {
		return true
	}
	return r.relations[rel].IsAVariant
}

// GetIsAVariants returns the names of all registered IS_A variants.
func (r *DimensionRegistry) GetIsAVariants() []string {
	out := []string{"IS_A"}
	for name, props := range r.relations {
		if props.IsAVariant {
			out = append(out, name)
		}
	}
	return out
}

// PartitionRange returns the [lo, hi] axis range for a named
// partition (e.g. "ontology", "axiology").
func (r *DimensionRegistry) PartitionRange(name string) ([2]int, bool) {
	v, ok := r.partitions[name]
	return v, ok
}
