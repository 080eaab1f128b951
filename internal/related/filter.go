package related

import (
	"fmt"
	"strings"
)

// SourceMatchFields is the read-only view of a source record used for
// matching. It is derived on every call and never stored.
type SourceMatchFields struct {
	Location string
	District string
	Tags     []string
}

// Empty reports whether no match field carries a value.
func (f SourceMatchFields) Empty() bool {
	return f.Location == "" && f.District == "" && len(f.Tags) == 0
}

// RelationFilter is a ready-to-execute match condition. Exactly one field is
// active. ExcludeKeys holds the source's id and slug; every key is excluded
// from both the id and the slug column of the target.
type RelationFilter struct {
	Strategy    string
	Field       string
	Value       string
	Values      []string
	ExcludeKeys []string
}

// MatchStrategy produces a filter from the source fields when the target
// collection supports it.
type MatchStrategy interface {
	Name() string
	Apply(fields SourceMatchFields, capability CollectionCapability) (RelationFilter, bool)
}

type locationStrategy struct{}

func (locationStrategy) Name() string { return "location" }

func (locationStrategy) Apply(f SourceMatchFields, c CollectionCapability) (RelationFilter, bool) {
	if !c.HasLocation || f.Location == "" {
		return RelationFilter{}, false
	}
	return RelationFilter{Strategy: "location", Field: FieldLocation, Value: f.Location}, true
}

type districtStrategy struct{}

func (districtStrategy) Name() string { return "district" }

func (districtStrategy) Apply(f SourceMatchFields, c CollectionCapability) (RelationFilter, bool) {
	if !c.HasDistrict || f.District == "" {
		return RelationFilter{}, false
	}
	return RelationFilter{Strategy: "district", Field: FieldDistrict, Value: f.District}, true
}

// tagsStrategy matches on any shared tag. It is opt-in.
type tagsStrategy struct{}

func (tagsStrategy) Name() string { return "tags" }

func (tagsStrategy) Apply(f SourceMatchFields, c CollectionCapability) (RelationFilter, bool) {
	var tags []string
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if !c.HasTags || len(tags) == 0 {
		return RelationFilter{}, false
	}
	return RelationFilter{Strategy: "tags", Field: FieldTags, Values: tags}, true
}

// DefaultStrategies is the built-in chain: location first, then district.
func DefaultStrategies() []MatchStrategy {
	return []MatchStrategy{locationStrategy{}, districtStrategy{}}
}

// StrategiesByName builds a chain from configured names, keeping order.
func StrategiesByName(names []string) ([]MatchStrategy, error) {
	if len(names) == 0 {
		return DefaultStrategies(), nil
	}
	out := make([]MatchStrategy, 0, len(names))
	for _, n := range names {
		switch n {
		case "location":
			out = append(out, locationStrategy{})
		case "district":
			out = append(out, districtStrategy{})
		case "tags":
			out = append(out, tagsStrategy{})
		default:
			return nil, fmt.Errorf("unknown match strategy %q", n)
		}
	}
	return out, nil
}

// BuildFilter walks the chain and returns the first applicable filter. The
// bool is false when no strategy applies and the lookup must be skipped.
func BuildFilter(chain []MatchStrategy, fields SourceMatchFields, capability CollectionCapability, excludeKeys ...string) (RelationFilter, bool) {
	for _, s := range chain {
		f, ok := s.Apply(fields, capability)
		if !ok {
			continue
		}
		for _, k := range excludeKeys {
			if k != "" && !containsString(f.ExcludeKeys, k) {
				f.ExcludeKeys = append(f.ExcludeKeys, k)
			}
		}
		return f, true
	}
	return RelationFilter{}, false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
