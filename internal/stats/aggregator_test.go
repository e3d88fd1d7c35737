package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/annostat/internal/model"
)

func ref(v int) *int { return &v }

func entity(doc, muni string, id int, typ string, text string) model.Entity {
	return model.Entity{
		DocumentID:   doc,
		Municipality: muni,
		ID:           id,
		Type:         typ,
		Text:         text,
		Length:       len([]rune(text)),
		TokenCount:   len(strings.Fields(text)),
		Validation:   model.ValidationUnset,
	}
}

// testCorpus has three documents in two municipalities plus one empty-type entity
func testCorpus() *model.Corpus {
	vote := entity("Alandroal_cm_001", "Alandroal", 3, "Votação", "Votação")
	vote.Features = map[string]string{model.FeaturePosicionamento: VotingMarker}
	position := entity("Alandroal_cm_001", "Alandroal", 4, "Posicionamento", "a favor")
	position.Validation = model.ValidationValidated
	result := entity("Alandroal_cm_001", "Alandroal", 5, "Posicionamento", "por unanimidade")
	result.Validation = model.ValidationRejected
	start := entity("Alandroal_cm_001", "Alandroal", 6, "Metadados", "Ponto 1")
	start.Features = map[string]string{model.FeatureFronteira: "Fronteira Inicial"}
	subject := entity("Alandroal_cm_001", "Alandroal", 7, "Assunto", "Obras")
	subject.Features = map[string]string{model.FeatureTema: "Urbanismo"}

	docs := []model.Document{
		{
			ID: "Alandroal_cm_001", Filename: "Alandroal_cm_001.json", Municipality: "Alandroal",
			Date: "2022-01-03", TextLength: 120, TokenCount: 20,
			Entities: []model.Entity{vote, position, result, start, subject},
			Relations: []model.Relation{
				{DocumentID: "Alandroal_cm_001", ID: 10, Type: "posicionamento", Source: ref(4), Target: ref(3), Posicionamento: "a favor"},
				{DocumentID: "Alandroal_cm_001", ID: 11, Type: "resultado", Source: ref(5), Target: ref(3), Resultado: "por unanimidade"},
			},
			Sections: []model.Section{
				{DocumentID: "Alandroal_cm_001", Number: 1, TokenCount: 8, Keywords: []int{7}},
			},
		},
		{
			ID: "Borba_cm_002", Filename: "Borba_cm_002.json", Municipality: "Borba",
			Date: "2021-11-30", TextLength: 80, TokenCount: 12,
			Entities: []model.Entity{
				entity("Borba_cm_002", "Borba", 2, "Assunto", "Obras"),
				entity("Borba_cm_002", "Borba", 3, "", "sem rótulo"),
				entity("Borba_cm_002", "Borba", 4, "Metadados", "Ata"),
			},
			Relations: []model.Relation{
				{DocumentID: "Borba_cm_002", ID: 9, Type: "resultado", Source: ref(2), TargetRef: 99, Resultado: "por maioria"},
			},
		},
		{
			ID: "Borba_cm_003", Filename: "Borba_cm_003.json", Municipality: "Borba",
			TextLength: 40, TokenCount: 6,
			Entities: []model.Entity{
				entity("Borba_cm_003", "Borba", 2, "Metadados", "Ata"),
			},
		},
	}

	corpus := &model.Corpus{Report: model.LoadReport{RunID: "run-1", FilesFound: 4, FilesLoaded: 3}}
	for _, d := range docs {
		corpus.Append(d)
	}
	corpus.Report.Add(model.NewIssue(model.IssueInvalidFormat, "broken.json", "bad"))
	empty := model.NewIssue(model.IssueEmptyType, "Borba_cm_002.json", "no label")
	empty.DocumentID = "Borba_cm_002"
	corpus.Report.Add(empty)
	unresolved := model.NewIssue(model.IssueUnresolvedRelation, "Borba_cm_002.json", "dependent 99")
	unresolved.DocumentID = "Borba_cm_002"
	corpus.Report.Add(unresolved)
	return corpus
}

func TestByEntityType_ExcludesEmptyType(t *testing.T) {
	corpus := testCorpus()
	counts := ByEntityType(corpus.Entities)

	assert.Equal(t, []string{"Metadados", "Posicionamento", "Assunto", "Votação"}, Keys(counts))
	assert.NotContains(t, Keys(counts), "")
	assert.Equal(t, 1, EmptyTypeCount(corpus.Entities))
	assert.Equal(t, len(corpus.Entities), Total(counts)+EmptyTypeCount(corpus.Entities))
}

func TestByEntityType_TiesKeepFirstSeen(t *testing.T) {
	entities := []model.Entity{
		{Type: "B"}, {Type: "A"}, {Type: "C"}, {Type: "A"}, {Type: "B"},
	}
	counts := ByEntityType(entities)
	assert.Equal(t, []string{"B", "A", "C"}, Keys(counts))
	assert.InDelta(t, 40.0, counts[0].Percent, 0.001)
}

func TestByMunicipality_SumsToTotal(t *testing.T) {
	corpus := testCorpus()
	counts := ByMunicipality(corpus.Entities)

	assert.Equal(t, len(corpus.Entities), Total(counts))
	assert.Equal(t, "Alandroal", counts[0].Key)
	assert.Equal(t, 5, counts[0].Count)
	assert.Equal(t, 4, counts[1].Count)

	docs := DocumentsByMunicipality(corpus.Documents)
	assert.Equal(t, []Count{{Key: "Borba", Count: 2, Percent: percent(2, 3)}, {Key: "Alandroal", Count: 1, Percent: percent(1, 3)}}, docs)
}

func TestByMunicipalityType_Matrix(t *testing.T) {
	corpus := testCorpus()
	m := ByMunicipalityType(corpus.Entities)

	assert.Equal(t, len(corpus.Entities), m.Total()+EmptyTypeCount(corpus.Entities))
	assert.Equal(t, []string{"Alandroal", "Borba"}, m.Rows)
	assert.Equal(t, Keys(ByEntityType(corpus.Entities)), m.Columns)
	assert.Equal(t, 2, m.Max())

	for i, row := range m.Rows {
		rowTotal := 0
		for _, v := range m.Values[i] {
			rowTotal += v
		}
		named := 0
		for _, e := range corpus.Entities {
			if e.Municipality == row && e.Type != "" {
				named++
			}
		}
		assert.Equal(t, named, rowTotal, row)
	}

	cells := m.Cells()
	assert.Contains(t, cells, Cell{Row: "Borba", Column: "Metadados", Count: 2})
	for _, c := range cells {
		assert.Positive(t, c.Count)
	}
}

func TestByValidation_FixedOrder(t *testing.T) {
	counts := ByValidation(testCorpus().Entities)
	require.Len(t, counts, 3)
	assert.Equal(t, []string{"validated", "rejected", "unset"}, Keys(counts))
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)
	assert.Equal(t, 7, counts[2].Count)

	empty := ByValidation(nil)
	assert.Equal(t, 0, Total(empty))
	assert.Len(t, empty, 3)
}

func TestRelationDistributions(t *testing.T) {
	corpus := testCorpus()
	corpus.Relations = append(corpus.Relations, model.Relation{ID: 50})

	assert.Equal(t, []string{"resultado", "posicionamento", NoLabel}, Keys(RelationTypes(corpus.Relations)))
	assert.Equal(t, []string{"a favor"}, Keys(Posicionamento(corpus.Relations)))
	assert.Equal(t, []string{"por unanimidade", "por maioria"}, Keys(Resultado(corpus.Relations)))
	assert.Equal(t, []string{"Fronteira Inicial"}, Keys(ByFeature(corpus.Entities, model.FeatureFronteira)))
}

func TestLengthsByType(t *testing.T) {
	entities := []model.Entity{
		{Type: "Assunto", Length: 4, TokenCount: 1},
		{Type: "Assunto", Length: 10, TokenCount: 3},
		{Type: "Assunto", Length: 6, TokenCount: 2},
		{Type: "Assunto", Length: 8, TokenCount: 2},
		{Type: "Assunto", Malformed: true},
		{Type: "", Length: 100},
	}
	stats := LengthsByType(entities)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 7.0, s.MeanLength, 0.001)
	assert.InDelta(t, 7.0, s.MedianLength, 0.001)
	assert.Equal(t, 4, s.MinLength)
	assert.Equal(t, 10, s.MaxLength)
	assert.InDelta(t, 2.0, s.MeanTokens, 0.001)
}

func TestTopTexts(t *testing.T) {
	entities := []model.Entity{
		{Type: "Metadados", Text: "Ata"},
		{Type: "Metadados", Text: "Ordem  do dia"},
		{Type: "Metadados", Text: "Ordem do dia"},
		{Type: "Metadados", Text: "Presentes"},
		{Type: "Assunto", Text: ""},
	}
	top := TopTexts(entities, 2)
	require.Len(t, top, 1)
	assert.Equal(t, "Metadados", top[0].Type)
	assert.Equal(t, []string{"Ordem do dia", "Ata"}, Keys(top[0].Texts))
}

func TestCooccurrence(t *testing.T) {
	corpus := testCorpus()
	pairs := Cooccurrence(corpus.Documents)

	require.NotEmpty(t, pairs)
	assert.Equal(t, Pair{A: "Metadados", B: "Assunto", Documents: 2}, pairs[0])
	for _, p := range pairs {
		assert.NotEqual(t, p.A, p.B)
		assert.NotEmpty(t, p.A)
		assert.NotEmpty(t, p.B)
	}
}

func TestSections(t *testing.T) {
	s := Sections(testCorpus().Documents)
	assert.Equal(t, 1, s.Sections)
	assert.Equal(t, 1, s.Documents)
	assert.Equal(t, 8, s.MinTokens)
	assert.Equal(t, 8, s.MaxTokens)
	assert.Equal(t, 1, s.WithKeywords)
	assert.Equal(t, []string{"Urbanismo"}, Keys(s.Temas))
}

func TestVoting_ConsolidatesPerVote(t *testing.T) {
	records := Voting(testCorpus().Documents)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Alandroal_cm_001", rec.DocumentID)
	assert.Equal(t, 3, rec.EntityID)
	assert.Equal(t, "Votação", rec.Text)
	assert.Equal(t, "a favor", rec.Posicionamento)
	assert.Equal(t, "por unanimidade", rec.Resultado)
	assert.True(t, rec.Complete)
}

func TestVoting_GovernorIsVoteWhenDependentIsNot(t *testing.T) {
	vote := model.Entity{ID: 1, Text: "Votação do ponto 2"}
	position := model.Entity{ID: 2, Text: "contra"}
	docs := []model.Document{{
		ID:       "d",
		Entities: []model.Entity{vote, position},
		Relations: []model.Relation{
			{Type: "posicionamento", Source: ref(1), Target: ref(2), Posicionamento: "contra"},
		},
	}}

	records := Voting(docs)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].EntityID)
	assert.False(t, records[0].Complete)
}

func TestQuality(t *testing.T) {
	q := Quality(testCorpus())

	require.Len(t, q.EmptyType, 1)
	assert.Equal(t, "Borba_cm_002", q.EmptyType[0].DocumentID)
	assert.Empty(t, q.Malformed)
	require.Len(t, q.Unresolved, 1)
	assert.Nil(t, q.Unresolved[0].Target)

	assert.Equal(t, 3, Total(q.ByKind))
	assert.Equal(t, "invalid_format", q.ByKind[0].Key)
	assert.Equal(t, []string{"Borba_cm_002.json", "broken.json"}, Keys(q.ByFile))
}

func TestSummarize(t *testing.T) {
	o := Summarize(testCorpus())
	assert.Equal(t, "run-1", o.RunID)
	assert.Equal(t, 3, o.Documents)
	assert.Equal(t, 1, o.FilesFailed)
	assert.Equal(t, []string{"Alandroal", "Borba"}, o.Municipalities)
	assert.Equal(t, 9, o.Entities)
	assert.Equal(t, 4, o.EntityTypes)
	assert.Equal(t, 1, o.EmptyTypeEntities)
	assert.Equal(t, 1, o.ValidatedEntities)
	assert.Equal(t, 240, o.TotalTextLength)
	assert.Equal(t, "2021-11-30", o.EarliestDate)
	assert.Equal(t, "2022-01-03", o.LatestDate)
	assert.InDelta(t, 3.0, o.EntitiesPerDocument, 0.001)
}

func TestDocuments(t *testing.T) {
	rows := Documents(testCorpus())
	require.Len(t, rows, 3)
	assert.Equal(t, "Borba_cm_002", rows[1].ID)
	assert.Equal(t, 3, rows[1].Entities)
	assert.Equal(t, 2, rows[1].EntityTypes)
	assert.Equal(t, 2, rows[1].Issues)
	assert.Equal(t, 1, rows[0].Validated)
}

type fixedScorer struct{}

func (fixedScorer) Calculate(*model.Corpus, *Summary) model.Score {
	return model.Score{Index: 42}
}

func TestAggregator_Deterministic(t *testing.T) {
	corpus := testCorpus()
	agg := NewAggregator(5).WithScorer(fixedScorer{})

	first := agg.Aggregate(corpus)
	second := agg.Aggregate(corpus)
	assert.Equal(t, first, second)
	assert.Equal(t, 42, first.Score.Index)
	assert.Equal(t, Total(first.Municipalities), first.Overview.Entities)
}
