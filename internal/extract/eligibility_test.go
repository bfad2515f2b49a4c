package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propostas/internal/model"
)

func TestEligibility(t *testing.T) {
	t.Parallel()

	r, ok := Eligibility(`{"codigo": 3, "descricao": "Sem margem"}`)
	require.True(t, ok)
	assert.Equal(t, json.Number("3"), r.Code)
	assert.Equal(t, "Sem margem", r.Description)
}

func TestEligibility_RepairedAndPartial(t *testing.T) {
	t.Parallel()

	r, ok := Eligibility(`{"codigo":,"descricao":"Idade"}`)
	require.True(t, ok)
	assert.Nil(t, r.Code)
	assert.Equal(t, "Idade", r.Description)
}

func TestEligibility_NotChecked(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, "", "texto livre", `[{"codigo":1}]`, 5} {
		_, ok := Eligibility(v)
		assert.False(t, ok, "value %v", v)
	}

	r, ok := Eligibility(map[string]any{"codigo": "9"})
	require.True(t, ok)
	assert.Equal(t, "9", r.Code)
}

func TestReason_ApplyWritesBothKeys(t *testing.T) {
	t.Parallel()

	row := model.NewRow(2)
	Reason{Code: "1"}.Apply(row)

	assert.Equal(t, []string{KeyEligibilityCode, KeyEligibilityDescription}, row.Keys())
	v, ok := row.Get(KeyEligibilityDescription)
	assert.True(t, ok)
	assert.Nil(t, v)
}
