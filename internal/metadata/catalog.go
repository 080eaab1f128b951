package metadata

// Collection names of the content site.
const (
	Destinations = "destinations"
	Homestays    = "homestays"
	Events       = "events"
	Thrills      = "thrills"
	Cafes        = "cafes"
	Itineraries  = "itineraries"
	Rentals      = "rentals"
	Blogs        = "blogs"
	Tips         = "tips"
	FAQs         = "faqs"
)

func idKey() PrimaryKey { return PrimaryKey{Field: "id", Type: "uuid", Generated: true} }

func slugOf(source string) *SlugConfig { return &SlugConfig{Field: "slug", Source: source} }

var (
	fID        = Field{Name: "id", Type: "uuid", Required: true}
	fSlug      = Field{Name: "slug", Type: "string", Unique: true, Nullable: true}
	fName      = Field{Name: "name", Type: "string", Required: true}
	fTitle     = Field{Name: "title", Type: "string", Required: true}
	fLocation  = Field{Name: "location", Type: "string", Nullable: true}
	fDistrict  = Field{Name: "district", Type: "string", Nullable: true}
	fTags      = Field{Name: "tags", Type: "string_array", Nullable: true}
	fDesc      = Field{Name: "description", Type: "text", Nullable: true}
	fImage     = Field{Name: "image_url", Type: "string", Nullable: true}
	fCreatedAt = Field{Name: "created_at", Type: "timestamp"}
)

// DefaultCatalog returns the built-in content collections. Shapes differ on
// purpose: events carry no location, thrills no district, itineraries use
// starting_point and regions_covered, tips and faqs have neither axis.
func DefaultCatalog() []*Entity {
	return []*Entity{
		{
			Name: Destinations, Table: Destinations, PrimaryKey: idKey(), Slug: slugOf("name"),
			Fields: []Field{fID, fName, fSlug, fLocation, fDistrict, fTags, fDesc, fImage, fCreatedAt},
		},
		{
			Name: Homestays, Table: Homestays, PrimaryKey: idKey(), Slug: slugOf("name"), SoftDelete: true,
			Fields: []Field{fID, fName, fSlug, fLocation, fDistrict, fTags,
				{Name: "price_per_night", Type: "decimal", Precision: 2, Nullable: true},
				{Name: "contact_phone", Type: "string", Nullable: true},
				fImage, fCreatedAt},
		},
		{
			Name: Events, Table: Events, PrimaryKey: idKey(), Slug: slugOf("title"),
			Fields: []Field{fID, fTitle, fSlug, fDistrict,
				{Name: "venue", Type: "string", Nullable: true},
				{Name: "starts_at", Type: "timestamp", Nullable: true},
				{Name: "ends_at", Type: "timestamp", Nullable: true},
				fDesc, fImage, fCreatedAt},
		},
		{
			Name: Thrills, Table: Thrills, PrimaryKey: idKey(), Slug: slugOf("name"),
			Fields: []Field{fID, fName, fSlug, fLocation, fTags,
				{Name: "difficulty", Type: "string", Nullable: true},
				fDesc, fImage, fCreatedAt},
		},
		{
			Name: Cafes, Table: Cafes, PrimaryKey: idKey(), Slug: slugOf("name"),
			Fields: []Field{fID, fName, fSlug, fLocation, fDistrict,
				{Name: "cuisine", Type: "string", Nullable: true},
				{Name: "price_range", Type: "string", Nullable: true},
				fImage, fCreatedAt},
		},
		{
			Name: Itineraries, Table: Itineraries, PrimaryKey: idKey(), Slug: slugOf("title"),
			Fields: []Field{fID, fTitle, fSlug,
				{Name: "starting_point", Type: "string", Nullable: true},
				{Name: "regions_covered", Type: "string_array", Nullable: true},
				{Name: "duration_days", Type: "int", Nullable: true},
				fTags, fDesc, fCreatedAt},
		},
		{
			Name: Rentals, Table: Rentals, PrimaryKey: idKey(), Slug: slugOf("name"),
			Fields: []Field{fID, fName, fSlug, fDistrict,
				{Name: "vehicle_type", Type: "string", Nullable: true},
				{Name: "daily_rate", Type: "decimal", Precision: 2, Nullable: true},
				fImage, fCreatedAt},
		},
		{
			Name: Blogs, Table: Blogs, PrimaryKey: idKey(), Slug: slugOf("title"),
			Fields: []Field{fID, fTitle, fSlug, fLocation, fTags,
				{Name: "body", Type: "text", Nullable: true},
				fCreatedAt},
		},
		{
			Name: Tips, Table: Tips, PrimaryKey: idKey(),
			Fields: []Field{fID, fTitle,
				{Name: "body", Type: "text", Nullable: true},
				{Name: "category", Type: "string", Nullable: true},
				fCreatedAt},
		},
		{
			Name: FAQs, Table: FAQs, PrimaryKey: idKey(),
			Fields: []Field{fID,
				{Name: "question", Type: "text", Required: true},
				{Name: "answer", Type: "text", Nullable: true},
				fCreatedAt},
		},
	}
}

// NewDefaultRegistry returns a registry loaded with DefaultCatalog.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Load(DefaultCatalog())
	return reg
}
