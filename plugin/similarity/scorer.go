// Package similarity scores how related two artifacts are across six
// attribute factors and names the factor that contributed most.
package similarity

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hrygo/sixdegrees/store"
)

// Relation names the attribute factor that dominates an edge.
// The declaration order is the tie-break order.
type Relation int

const (
	RelationArtist Relation = iota
	RelationStyle
	RelationMaterial
	RelationPeriod
	RelationText
	RelationDepartment

	numRelations = int(RelationDepartment) + 1
)

var relationNames = [numRelations]string{"artist", "style", "material", "period", "text", "department"}

func (r Relation) String() string {
	if r < 0 || int(r) >= numRelations {
		return fmt.Sprintf("relation(%d)", int(r))
	}
	return relationNames[r]
}

// MarshalText encodes the relation by name.
func (r Relation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a relation name.
func (r *Relation) UnmarshalText(text []byte) error {
	for i, name := range relationNames {
		if name == string(text) {
			*r = Relation(i)
			return nil
		}
	}
	return fmt.Errorf("unknown relation %q", text)
}

// Weights are the per-factor multipliers. They need not sum to 1.
type Weights struct {
	Artist     float64 `json:"artist" validate:"gte=0"`
	Style      float64 `json:"style" validate:"gte=0"`
	Material   float64 `json:"material" validate:"gte=0"`
	Period     float64 `json:"period" validate:"gte=0"`
	Text       float64 `json:"text" validate:"gte=0"`
	Department float64 `json:"department" validate:"gte=0"`
}

// DefaultWeights are the reference weights.
var DefaultWeights = Weights{
	Artist:     0.40,
	Style:      0.20,
	Material:   0.10,
	Period:     0.10,
	Text:       0.15,
	Department: 0.05,
}

func (w Weights) values() [numRelations]float64 {
	return [numRelations]float64{w.Artist, w.Style, w.Material, w.Period, w.Text, w.Department}
}

const (
	ArtistMatchName = "name"
	ArtistMatchID   = "id"

	SecondaryDepartment = "department"
	SecondaryCulture    = "culture"
)

// Config configures a Scorer.
type Config struct {
	Weights Weights
	// ArtistMatch selects whether makers are compared by display name or by maker ID.
	ArtistMatch string `validate:"omitempty,oneof=name id"`
	// SecondaryAttribute selects the attribute behind the department factor.
	SecondaryAttribute string `validate:"omitempty,oneof=department culture"`
}

// Result is the outcome of scoring one pair.
type Result struct {
	Total float64
	// Dominant is the factor with the largest weighted contribution.
	Dominant Relation
	// Contributions holds weight*factor, indexed by Relation.
	Contributions [numRelations]float64
}

// Scorer computes pairwise similarity. It is safe for concurrent use.
type Scorer struct {
	weights   [numRelations]float64
	byMakerID bool
	culture   bool
	freq      map[string]int
}

var validate = validator.New()

// NewScorer creates a scorer. freq is the medium frequency table of the
// artifact set being scored.
func NewScorer(cfg Config, freq map[string]int) (*Scorer, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid similarity config: %w", err)
	}
	return &Scorer{
		weights:   cfg.Weights.values(),
		byMakerID: cfg.ArtistMatch == ArtistMatchID,
		culture:   cfg.SecondaryAttribute == SecondaryCulture,
		freq:      freq,
	}, nil
}

// Factors returns the unweighted factor values for a pair, indexed by Relation.
func (s *Scorer) Factors(a, b *store.Artifact) [numRelations]float64 {
	var f [numRelations]float64
	f[RelationArtist] = s.artist(a, b)
	f[RelationStyle] = exactMatch(a.Classification, b.Classification)
	f[RelationMaterial] = MaterialSimilarity(a.Medium, b.Medium, s.freq)
	f[RelationPeriod] = PeriodSimilarity(a.Date, b.Date)
	f[RelationText] = CosineSimilarity(a.Embedding, b.Embedding)
	if s.culture {
		f[RelationDepartment] = exactMatch(a.MakerCulture, b.MakerCulture)
	} else {
		f[RelationDepartment] = exactMatch(a.Department, b.Department)
	}
	return f
}

// Score computes the weighted total and dominant relation. Score(a, b) equals Score(b, a).
func (s *Scorer) Score(a, b *store.Artifact) Result {
	factors := s.Factors(a, b)

	var r Result
	best := -1.0
	for i, v := range factors {
		c := s.weights[i] * v
		r.Contributions[i] = c
		r.Total += c
		// Strict comparison keeps the earliest relation on ties.
		if c > best {
			best = c
			r.Dominant = Relation(i)
		}
	}
	return r
}

func (s *Scorer) artist(a, b *store.Artifact) float64 {
	if s.byMakerID {
		if a.MakerID == 0 || a.MakerID != b.MakerID {
			return 0
		}
		return 1
	}
	return exactMatch(a.Maker, b.Maker)
}
