package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

// Table is one delimited output file
type Table struct {
	Name string // File name, e.g. "entities.csv"
	Rows [][]string
}

// CSV encodes the table
func (t Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Tables builds every CSV table of a run
func Tables(corpus *model.Corpus, summary *stats.Summary) []Table {
	return []Table{
		{Name: "entities.csv", Rows: entityRows(corpus.Entities)},
		{Name: "relations.csv", Rows: relationRows(corpus.Relations)},
		{Name: "documents.csv", Rows: documentRows(summary.Documents)},
		{Name: "entity_types.csv", Rows: entityTypeRows(summary)},
		{Name: "municipalities.csv", Rows: municipalityRows(summary)},
		{Name: "municipality_entity_types.csv", Rows: cellRows(summary.MunicipalityTypes, "municipality", "entity_type")},
		{Name: "validation.csv", Rows: countTable("status", summary.Validation)},
		{Name: "relation_types.csv", Rows: countTable("relation_type", summary.RelationTypes)},
		{Name: "quality_issues.csv", Rows: issueRows(corpus.Report)},
		{Name: "voting.csv", Rows: votingRows(summary.Voting)},
		{Name: "sections.csv", Rows: sectionRows(corpus.Sections)},
		{Name: "documents_by_year.csv", Rows: countTable("year", summary.Temporal.DocumentsByYear)},
		{Name: "entities_by_year.csv", Rows: cellRows(summary.Temporal.EntitiesByYear, "year", "entity_type")},
		{Name: "posicionamento_by_year.csv", Rows: cellRows(summary.Temporal.PosicionamentoByYear, "year", "posicionamento")},
		{Name: "posicionamento_by_municipality.csv", Rows: cellRows(summary.PosicionamentoByMuni, "municipality", "posicionamento")},
		{Name: "resultado_by_municipality.csv", Rows: cellRows(summary.ResultadoByMuni, "municipality", "resultado")},
		{Name: "posicionamento_resultado.csv", Rows: cellRows(summary.PosicionamentoResultado, "posicionamento", "resultado")},
		{Name: "metadata.csv", Rows: metadataRows(summary.Metadata)},
		{Name: "party_by_municipality.csv", Rows: cellRows(summary.Metadata.PartidoByMunicipality, "municipality", "partido")},
	}
}

func entityRows(entities []model.Entity) [][]string {
	rows := [][]string{{
		"document_id", "municipality", "entity_id", "type", "begin", "end", "validation",
		"text", "length", "token_count", "malformed", "fronteira", "posicionamento", "tema",
	}}
	for _, e := range entities {
		rows = append(rows, []string{
			e.DocumentID, e.Municipality, itoa(e.ID), e.Type, itoa(e.Begin), itoa(e.End), string(e.Validation),
			e.Text, itoa(e.Length), itoa(e.TokenCount), strconv.FormatBool(e.Malformed),
			e.Feature(model.FeatureFronteira), e.Feature(model.FeaturePosicionamento), e.Feature(model.FeatureTema),
		})
	}
	return rows
}

func relationRows(relations []model.Relation) [][]string {
	rows := [][]string{{
		"document_id", "municipality", "relation_id", "type", "source", "target",
		"source_ref", "target_ref", "resolved", "posicionamento", "resultado",
	}}
	for _, r := range relations {
		rows = append(rows, []string{
			r.DocumentID, r.Municipality, itoa(r.ID), r.Type, optional(r.Source), optional(r.Target),
			itoa(r.SourceRef), itoa(r.TargetRef), strconv.FormatBool(r.Resolved()), r.Posicionamento, r.Resultado,
		})
	}
	return rows
}

// optional renders an unresolved endpoint as an empty cell
func optional(v *int) string {
	if v == nil {
		return ""
	}
	return itoa(*v)
}

func documentRows(docs []stats.DocumentStats) [][]string {
	rows := [][]string{{
		"document_id", "filename", "municipality", "meeting_type", "number", "date", "text_length",
		"token_count", "entities", "relations", "sections", "entity_types", "validated", "issues",
	}}
	for _, d := range docs {
		rows = append(rows, []string{
			d.ID, d.Filename, d.Municipality, d.MeetingType, d.Number, d.Date, itoa(d.TextLength),
			itoa(d.TokenCount), itoa(d.Entities), itoa(d.Relations), itoa(d.Sections), itoa(d.EntityTypes),
			itoa(d.Validated), itoa(d.Issues),
		})
	}
	return rows
}

// entityTypeRows joins type counts with their span length statistics
func entityTypeRows(summary *stats.Summary) [][]string {
	lengths := make(map[string]stats.LengthStats, len(summary.Lengths))
	for _, l := range summary.Lengths {
		lengths[l.Type] = l
	}

	rows := [][]string{{
		"entity_type", "count", "percent", "mean_length", "median_length", "min_length", "max_length", "mean_tokens",
	}}
	for _, c := range summary.EntityTypes {
		l := lengths[c.Key]
		rows = append(rows, []string{
			c.Key, itoa(c.Count), formatPercent(c.Percent), ftoa(l.MeanLength), ftoa(l.MedianLength),
			itoa(l.MinLength), itoa(l.MaxLength), ftoa(l.MeanTokens),
		})
	}
	return rows
}

func municipalityRows(summary *stats.Summary) [][]string {
	density := make(map[string]stats.Density, len(summary.Density))
	for _, d := range summary.Density {
		density[d.Municipality] = d
	}

	rows := [][]string{{"municipality", "documents", "entities", "percent", "entities_per_document", "entities_per_1k_tokens"}}
	for _, c := range summary.Municipalities {
		d := density[c.Key]
		rows = append(rows, []string{
			c.Key, itoa(d.Documents), itoa(c.Count), formatPercent(c.Percent),
			ftoa(d.EntitiesPerDocument), ftoa(d.EntitiesPer1kTokens),
		})
	}
	return rows
}

// metadataRows stacks the meeting metadata distributions into one long table
func metadataRows(meta stats.Metadata) [][]string {
	rows := [][]string{{"feature", "value", "count", "percent"}}
	for _, group := range []struct {
		feature string
		counts  []stats.Count
	}{
		{"partido", meta.Partido},
		{"presenca", meta.Presenca},
		{"tipo_reuniao", meta.TipoReuniao},
	} {
		for _, c := range group.counts {
			rows = append(rows, []string{group.feature, c.Key, itoa(c.Count), formatPercent(c.Percent)})
		}
	}
	return rows
}

func cellRows(m stats.Matrix, row, column string) [][]string {
	rows := [][]string{{row, column, "count"}}
	for _, c := range m.Cells() {
		rows = append(rows, []string{c.Row, c.Column, itoa(c.Count)})
	}
	return rows
}

// issueRows lists skipped files first, then non-fatal issues, in load order
func issueRows(report model.LoadReport) [][]string {
	rows := [][]string{{"kind", "severity", "file", "document_id", "entity_id", "relation_id", "message"}}
	add := func(issues []model.Issue) {
		for _, i := range issues {
			rows = append(rows, []string{
				string(i.Kind), string(i.Severity), i.File, i.DocumentID,
				zeroEmpty(i.EntityID), zeroEmpty(i.RelationID), i.Message,
			})
		}
	}
	add(report.Failures)
	add(report.Issues)
	return rows
}

func zeroEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return itoa(v)
}

func votingRows(records []stats.VotingRecord) [][]string {
	rows := [][]string{{"document_id", "municipality", "date", "entity_id", "text", "posicionamento", "resultado", "complete"}}
	for _, v := range records {
		rows = append(rows, []string{
			v.DocumentID, v.Municipality, v.Date, itoa(v.EntityID), v.Text,
			v.Posicionamento, v.Resultado, strconv.FormatBool(v.Complete),
		})
	}
	return rows
}

func sectionRows(sections []model.Section) [][]string {
	rows := [][]string{{"document_id", "municipality", "number", "begin", "end", "token_count", "keywords", "text"}}
	for _, s := range sections {
		keywords := make([]string, len(s.Keywords))
		for i, k := range s.Keywords {
			keywords[i] = itoa(k)
		}
		rows = append(rows, []string{
			s.DocumentID, s.Municipality, itoa(s.Number), itoa(s.Begin), itoa(s.End),
			itoa(s.TokenCount), strings.Join(keywords, ";"), s.Text,
		})
	}
	return rows
}

// SummaryJSON encodes the summary as indented JSON
func SummaryJSON(summary *stats.Summary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SummaryYAML encodes the summary as YAML
func SummaryYAML(summary *stats.Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadReportJSON encodes the load report as indented JSON
func LoadReportJSON(report model.LoadReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
