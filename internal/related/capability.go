package related

// Candidate column names a probe looks for.
const (
	FieldLocation  = "location"
	FieldDistrict  = "district"
	FieldTags      = "tags"
	FieldID        = "id"
	FieldSlug      = "slug"
	FieldCreatedAt = "created_at"
	FieldDeletedAt = "deleted_at"
)

// CollectionCapability records which filterable columns a collection exposes,
// as observed on a sampled row. The zero value means "supports nothing".
type CollectionCapability struct {
	HasLocation  bool `json:"has_location"`
	HasDistrict  bool `json:"has_district"`
	HasTags      bool `json:"has_tags"`
	HasID        bool `json:"has_id"`
	HasSlug      bool `json:"has_slug"`
	HasCreatedAt bool `json:"has_created_at"`
	HasDeletedAt bool `json:"has_deleted_at"`
}

// capabilityFromRow inspects key presence only; a NULL value still counts.
func capabilityFromRow(row Record) CollectionCapability {
	has := func(k string) bool {
		_, ok := row[k]
		return ok
	}
	return CollectionCapability{
		HasLocation:  has(FieldLocation),
		HasDistrict:  has(FieldDistrict),
		HasTags:      has(FieldTags),
		HasID:        has(FieldID),
		HasSlug:      has(FieldSlug),
		HasCreatedAt: has(FieldCreatedAt),
		HasDeletedAt: has(FieldDeletedAt),
	}
}
