package schema

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// SpeciesFieldSpecs is the built-in constraint table for species datasets,
// used when no schema document is supplied.
var SpeciesFieldSpecs = []FieldSpec{
	{Name: "common_name", Type: TypeString, MinLength: intPtr(1)},
	{Name: "etymology", Type: TypeString},
	{Name: "fruit_type", Type: TypeString, MinLength: intPtr(1)},
	{Name: "habitat", Type: TypeString},
	{Name: "id", Type: TypeString, Required: true, MinLength: intPtr(1)},
	{Name: "identification_characters", Type: TypeString},
	{Name: "image_urls", Type: TypeArray, Required: true},
	{Name: "language", Type: TypeString, MinLength: intPtr(1)},
	{Name: "leaf_type", Type: TypeString, MinLength: intPtr(1)},
	{Name: "pest", Type: TypeString},
	{Name: "phenology", Type: TypeString},
	{Name: "scientific_name", Type: TypeString, Required: true, MinLength: intPtr(1)},
	{Name: "seed_germination", Type: TypeString},
	{Name: "sr_no", Type: TypeInteger, Required: true, Minimum: floatPtr(1)},
	{Name: "videos", Type: TypeArray, Required: true},
}

// Species returns a copy of the built-in species schema.
func Species() *Schema {
	fields := make([]FieldSpec, len(SpeciesFieldSpecs))
	copy(fields, SpeciesFieldSpecs)
	return &Schema{Title: "species", Fields: fields}
}
