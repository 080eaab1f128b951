package metadata

type Field struct {
	Name      string `json:"name"`
	Type      string `json:"type"` // string, text, int, decimal, boolean, uuid, timestamp, json, string_array
	Required  bool   `json:"required,omitempty"`
	Unique    bool   `json:"unique,omitempty"`
	Nullable  bool   `json:"nullable,omitempty"`
	Precision int    `json:"precision,omitempty"`
}
