package stats

import (
	"github.com/ppiankov/annostat/internal/model"
)

// Summary holds every aggregate of one run. It is derived from the corpus only,
// so aggregating the same corpus twice yields an equal Summary.
type Summary struct {
	Overview                Overview        `json:"overview" yaml:"overview"`
	EntityTypes             []Count         `json:"entity_types" yaml:"entity_types"`
	Municipalities          []Count         `json:"municipalities" yaml:"municipalities"`
	DocumentsByMunicipality []Count         `json:"documents_by_municipality" yaml:"documents_by_municipality"`
	MunicipalityTypes       Matrix          `json:"municipality_entity_types" yaml:"municipality_entity_types"`
	Validation              []Count         `json:"validation" yaml:"validation"`
	RelationTypes           []Count         `json:"relation_types" yaml:"relation_types"`
	Posicionamento          []Count         `json:"posicionamento" yaml:"posicionamento"`
	Resultado               []Count         `json:"resultado" yaml:"resultado"`
	Fronteira               []Count         `json:"fronteira" yaml:"fronteira"`
	Lengths                 []LengthStats   `json:"lengths" yaml:"lengths"`
	TopTexts                []TypeTexts     `json:"top_texts" yaml:"top_texts"`
	Cooccurrence            []Pair          `json:"cooccurrence" yaml:"cooccurrence"`
	Sections                SectionStats    `json:"sections" yaml:"sections"`
	Documents               []DocumentStats `json:"documents" yaml:"documents"`
	Voting                  []VotingRecord  `json:"voting" yaml:"voting"`
	Temporal                Temporal        `json:"temporal" yaml:"temporal"`
	PosicionamentoByMuni    Matrix          `json:"posicionamento_by_municipality" yaml:"posicionamento_by_municipality"`
	ResultadoByMuni         Matrix          `json:"resultado_by_municipality" yaml:"resultado_by_municipality"`
	PosicionamentoResultado Matrix          `json:"posicionamento_resultado" yaml:"posicionamento_resultado"`
	Metadata                Metadata        `json:"metadata" yaml:"metadata"`
	Density                 []Density       `json:"density" yaml:"density"`
	Quality                 QualityView     `json:"quality" yaml:"quality"`
	Score                   model.Score     `json:"score" yaml:"score"`
}

// Scorer rates the annotation quality of an aggregated corpus
type Scorer interface {
	Calculate(corpus *model.Corpus, summary *Summary) model.Score
}

// Aggregator computes grouped counts and distributions over a corpus
type Aggregator struct {
	topN   int
	scorer Scorer
}

// NewAggregator creates an aggregator keeping topN texts per entity type
func NewAggregator(topN int) *Aggregator {
	return &Aggregator{topN: topN}
}

// WithScorer attaches a quality scorer run after the aggregates are built
func (a *Aggregator) WithScorer(s Scorer) *Aggregator {
	a.scorer = s
	return a
}

// Aggregate computes every grouping. It only reads the corpus.
func (a *Aggregator) Aggregate(corpus *model.Corpus) *Summary {
	s := &Summary{
		Overview:                Summarize(corpus),
		EntityTypes:             ByEntityType(corpus.Entities),
		Municipalities:          ByMunicipality(corpus.Entities),
		DocumentsByMunicipality: DocumentsByMunicipality(corpus.Documents),
		MunicipalityTypes:       ByMunicipalityType(corpus.Entities),
		Validation:              ByValidation(corpus.Entities),
		RelationTypes:           RelationTypes(corpus.Relations),
		Posicionamento:          Posicionamento(corpus.Relations),
		Resultado:               Resultado(corpus.Relations),
		Fronteira:               ByFeature(corpus.Entities, model.FeatureFronteira),
		Lengths:                 LengthsByType(corpus.Entities),
		TopTexts:                TopTexts(corpus.Entities, a.topN),
		Cooccurrence:            Cooccurrence(corpus.Documents),
		Sections:                Sections(corpus.Documents),
		Documents:               Documents(corpus),
		Voting:                  Voting(corpus.Documents),
		Temporal:                ByYear(corpus.Documents),
		PosicionamentoByMuni:    PosicionamentoByMunicipality(corpus.Relations),
		ResultadoByMuni:         ResultadoByMunicipality(corpus.Relations),
		Metadata:                MetadataPatterns(corpus.Entities),
		Density:                 Densities(corpus.Documents),
		Quality:                 Quality(corpus),
	}
	s.PosicionamentoResultado = PosicionamentoResultado(s.Voting)

	if a.scorer != nil {
		s.Score = a.scorer.Calculate(corpus, s)
	}
	return s
}
