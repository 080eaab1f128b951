package metadata

type SlugConfig struct {
	Field  string `json:"field"`            // slug column (unique)
	Source string `json:"source,omitempty"` // column the external slug generator reads
}

// Entity describes one content collection and the table backing it.
// Fields are the columns bootstrap creates; collections drift, so readers
// must not assume every row carries them.
type Entity struct {
	Name       string      `json:"name"`
	Table      string      `json:"table"`
	PrimaryKey PrimaryKey  `json:"primary_key"`
	SoftDelete bool        `json:"soft_delete"`
	Slug       *SlugConfig `json:"slug,omitempty"`
	Fields     []Field     `json:"fields"`
}

type PrimaryKey struct {
	Field     string `json:"field"`
	Type      string `json:"type"` // uuid, int, bigint, string
	Generated bool   `json:"generated"`
}

// GetField returns a pointer to the field with the given name, or nil.
func (e *Entity) GetField(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the entity has a field with the given name.
func (e *Entity) HasField(name string) bool {
	return e.GetField(name) != nil
}

// FieldNames returns all field names.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// SlugField returns the slug column name, or "" when the collection has none.
func (e *Entity) SlugField() string {
	if e.Slug == nil {
		return ""
	}
	return e.Slug.Field
}
