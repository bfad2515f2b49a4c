package pipeline

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"propostas/internal/config"
	"propostas/internal/extract"
	"propostas/internal/model"
)

func sourceTable(columns []string, rows ...[]any) *model.Table {
	t := model.NewTable(columns)
	for _, cells := range rows {
		r := model.NewRow(len(columns))
		for i, c := range columns {
			r.Set(c, cells[i])
		}
		t.Append(r)
	}
	return t
}

func tableCells(t *model.Table) [][]any {
	out := make([][]any, t.Len())
	for i := range t.Rows {
		out[i] = t.Cells(i)
	}
	return out
}

func TestProcess_FullTable(t *testing.T) {
	t.Parallel()

	src := sourceTable(
		[]string{"Parceiro", "Número da Proposta", "Margens Prev", "Motivo Inelegibilidade"},
		[]any{"Banco X", "1", `[{"nome":"Ana","cpf":111,"cbo":{"codigo":"4110","descricao":"Escriturario"},` +
			`"cnae":{"codigo":"","descricao":"Varejo"},"nomeEmpregador":"ACME"},` +
			`{"nome":"Bia","cpf":222,"emprestimosLegados":}]`, nil},
		[]any{"Banco Y", "2", `{"nome":"Ana","cpf":333}`, `{"codigo":5,"descricao":"Sem margem"}`},
		[]any{"Banco Z", "3", "lixo", nil},
	)

	p := NewProcessor(config.DefaultPipelineConfig(), zaptest.NewLogger(t))
	res := p.Process(src)

	require.False(t, res.Fallback)
	assert.Equal(t, 3, res.SourceRows)
	assert.Equal(t, 3, res.EntityRecords)
	assert.Equal(t, 4, res.ExpandedRows)
	assert.Equal(t, 1, res.DuplicatesDropped)
	assert.Equal(t, PayloadStats{Direct: 1, Repaired: 1, Failed: 1}, res.Payloads)

	wantColumns := []string{
		"Nome", "CPF", "CBO", "CNAE", "Empregador",
		"Parceiro", "Número da Proposta",
	}
	if diff := cmp.Diff(wantColumns, res.Table.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}

	want := [][]any{
		{"Ana", "111", "4110 - Escriturario", "", "ACME", "Banco X", "1"},
		{"Bia", "222", nil, nil, nil, "Banco X", "1"},
		{nil, nil, nil, nil, nil, "Banco Z", "3"},
	}
	if diff := cmp.Diff(want, tableCells(res.Table)); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_EligibilityColumnsAppearWhenParsed(t *testing.T) {
	t.Parallel()

	src := sourceTable(
		[]string{"Parceiro", "Margens Prev", "Motivo"},
		[]any{"Banco X", nil, `{"codigo":7,"descricao":}`},
	)
	res := NewProcessor(config.DefaultPipelineConfig(), nil).Process(src)

	require.False(t, res.Fallback)
	assert.Equal(t, []string{
		extract.KeyEligibilityCode, extract.KeyEligibilityDescription, "Parceiro",
	}, res.Table.Columns)
}

func TestProcess_FallbackKeepsSource(t *testing.T) {
	t.Parallel()

	src := sourceTable(
		[]string{"A", "Margens Prev"},
		[]any{nil, "{broken"},
		[]any{nil, nil},
	)
	res := NewProcessor(config.DefaultPipelineConfig(), nil).Process(src)

	require.True(t, res.Fallback)
	assert.Same(t, src, res.Table)
	assert.Equal(t, 2, res.Table.Len())
	assert.Len(t, res.Table.Columns, 2)
}

func TestProcess_NoPayloadColumn(t *testing.T) {
	t.Parallel()

	src := sourceTable([]string{"A", "B"}, []any{"1", `{"x":1}`})
	res := NewProcessor(config.DefaultPipelineConfig(), nil).Process(src)

	require.False(t, res.Fallback)
	assert.Equal(t, []string{"A"}, res.Table.Columns)
	assert.Equal(t, 1, res.Payloads.Absent)
}

func TestProcess_AgreesWithExpand(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultPipelineConfig()
	src := sourceTable(
		[]string{"Parceiro", "MargensPrev", "Motivo"},
		[]any{"Banco X", `[{"nome":"Ana"},{"nome":"Bia","x":}]`, nil},
		[]any{"Banco Y", "lixo", `{"codigo":1,"descricao":"Idade"}`},
		[]any{nil, nil, nil},
	)

	cols := ResolveHeader(src.Columns, cfg)
	require.Equal(t, Columns{Payload: "MargensPrev", Eligibility: "Motivo"}, cols)

	var expanded []*model.Row
	for _, row := range src.Rows {
		expanded = append(expanded, slices.Collect(Expand(row, cols))...)
	}

	res := NewProcessor(cfg, nil).Process(src)
	assert.Equal(t, len(expanded), res.ExpandedRows)
	assert.Equal(t, 2, res.EntityRecords)
	assert.Equal(t, PayloadStats{Repaired: 1, Failed: 1, Absent: 1}, res.Payloads)
	require.Equal(t, len(expanded), res.Table.Len())
	for i, row := range expanded {
		assert.Equal(t, row.Map(), res.Table.Rows[i].Map())
	}
}
