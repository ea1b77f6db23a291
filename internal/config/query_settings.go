package config

// StringQueryBoosts are the field-level boosts for the string-query
// disjunction (§4.1).
type StringQueryBoosts struct {
	Name                 float64 `mapstructure:"name"`
	Label                float64 `mapstructure:"label"`
	LabelPrefix          float64 `mapstructure:"label_prefix"`
	ZipCodes             float64 `mapstructure:"zip_codes"`
	HouseNumber          float64 `mapstructure:"house_number"`
	LabelNgram           float64 `mapstructure:"label_ngram"`
	LabelNgramWithCoord  float64 `mapstructure:"label_ngram_with_coord"`
}

// TypeQueryBoosts are the per-entity-type boosts for the type-prior
// disjunction (§4.1).
type TypeQueryBoosts struct {
	Address float64 `mapstructure:"address"`
	Admin   float64 `mapstructure:"admin"`
	Stop    float64 `mapstructure:"stop"`
	Poi     float64 `mapstructure:"poi"`
	Street  float64 `mapstructure:"street"`
}

// GaussianCurve parametrizes the proximity-decay function (§4.1.2) and the
// zoom-ratio computation (§4.1).
type GaussianCurve struct {
	ScaleKm  float64 `mapstructure:"scale_km"`
	OffsetKm float64 `mapstructure:"offset_km"`
	Decay    float64 `mapstructure:"decay"`
}

// BuildWeight configures one field_value_factor clause used by the
// type-weighted importance booster (§4.1.1).
type BuildWeight struct {
	Admin   float64 `mapstructure:"admin"`
	Factor  float64 `mapstructure:"factor"`
	Missing float64 `mapstructure:"missing"`
}

// TypeWeights are the per-type constants consumed by the importance
// function (§3).
type TypeWeights struct {
	Address float64 `mapstructure:"address"`
	Admin   float64 `mapstructure:"admin"`
	Stop    float64 `mapstructure:"stop"`
	Poi     float64 `mapstructure:"poi"`
	Street  float64 `mapstructure:"street"`
}

// RadiusRange bounds the zoom-ratio computation (§4.1).
type RadiusRange struct {
	MinKm float64 `mapstructure:"min_radius_km"`
	MaxKm float64 `mapstructure:"max_radius_km"`
}

// ImportanceWeights groups the three BuildWeight profiles blended by the
// zoom ratio, plus the radius range and per-type constants.
type ImportanceWeights struct {
	MinRadiusPrefix BuildWeight `mapstructure:"min_radius_prefix"`
	MinRadiusFuzzy  BuildWeight `mapstructure:"min_radius_fuzzy"`
	MaxRadius       BuildWeight `mapstructure:"max_radius"`
	RadiusRange     RadiusRange `mapstructure:"radius_range"`
	Types           TypeWeights `mapstructure:"types"`
}

// ImportanceProximity groups the Gaussian decay and its constant weights.
type ImportanceProximity struct {
	Gaussian    GaussianCurve `mapstructure:"gaussian"`
	WeightFuzzy float64       `mapstructure:"weight_fuzzy"`
	Weight      float64       `mapstructure:"weight"`
}

// ImportanceQuery groups the proximity and weights sub-settings.
type ImportanceQuery struct {
	Proximity ImportanceProximity `mapstructure:"proximity"`
	Weights   ImportanceWeights   `mapstructure:"weights"`
}

// StringQuery groups the string-query boosts and outer boost.
type StringQuery struct {
	Boosts StringQueryBoosts `mapstructure:"boosts"`
	Global float64           `mapstructure:"global"`
}

// TypeQuery groups the type-query boosts and outer boost.
type TypeQuery struct {
	Boosts TypeQueryBoosts `mapstructure:"boosts"`
	Global float64         `mapstructure:"global"`
}

// QuerySettings is the full tuning surface consumed by the planner (§3).
// Loaded once at boot and shared by reference; treated as immutable for
// the lifetime of a request (§5).
type QuerySettings struct {
	StringQuery      StringQuery      `mapstructure:"string_query"`
	TypeQuery        TypeQuery        `mapstructure:"type_query"`
	ImportanceQuery  ImportanceQuery  `mapstructure:"importance_query"`

	// FuzzyMinShouldMatch tunes the Fuzzy matching filter's ngram
	// minimum_should_match (§4.1), e.g. "80%". Left as an explicit
	// setting per §9's open question rather than a compiled-in literal.
	FuzzyMinShouldMatch string `mapstructure:"fuzzy_min_should_match"`
}

// DefaultQuerySettings returns a reasonable out-of-the-box tuning, mirroring
// the magnitude of values real mimirsbrunn-style deployments ship with.
func DefaultQuerySettings() QuerySettings {
	return QuerySettings{
		StringQuery: StringQuery{
			Boosts: StringQueryBoosts{
				Name:                1.0,
				Label:               1.0,
				LabelPrefix:         2.0,
				ZipCodes:            1.0,
				HouseNumber:         1.0,
				LabelNgram:          0.5,
				LabelNgramWithCoord: 0.8,
			},
			Global: 1.0,
		},
		TypeQuery: TypeQuery{
			Boosts: TypeQueryBoosts{Address: 1.0, Admin: 1.0, Stop: 1.0, Poi: 1.0, Street: 1.0},
			Global: 1.0,
		},
		ImportanceQuery: ImportanceQuery{
			Proximity: ImportanceProximity{
				Gaussian:    GaussianCurve{ScaleKm: 50, OffsetKm: 2, Decay: 0.5},
				WeightFuzzy: 0.2,
				Weight:      0.5,
			},
			Weights: ImportanceWeights{
				MinRadiusPrefix: BuildWeight{Admin: 0.1, Factor: 1.0, Missing: 0.0},
				MinRadiusFuzzy:  BuildWeight{Admin: 0.1, Factor: 1.0, Missing: 0.0},
				MaxRadius:       BuildWeight{Admin: 1.0, Factor: 3.0, Missing: 0.0},
				RadiusRange:     RadiusRange{MinKm: 2, MaxKm: 1000},
				Types:           TypeWeights{Address: 1.0, Admin: 1.0, Stop: 0.8, Poi: 1.0, Street: 1.0},
			},
		},
		FuzzyMinShouldMatch: "80%",
	}
}
