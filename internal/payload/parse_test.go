package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PassesStructuredThrough(t *testing.T) {
	t.Parallel()

	obj := map[string]any{"nome": "Ana"}
	arr := []any{obj}

	got, outcome := ParseOutcome(obj)
	assert.Equal(t, obj, got)
	assert.Equal(t, Structured, outcome)
	assert.Equal(t, arr, Parse(arr))
}

func TestParse_NonTextIsNil(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, 42, 3.5, true, json.Number("7")} {
		got, outcome := ParseOutcome(v)
		assert.Nil(t, got, "value %v", v)
		assert.Equal(t, Absent, outcome)
	}
}

func TestParse_Recovery(t *testing.T) {
	t.Parallel()

	got, outcome := ParseOutcome(`{"a":,"b":1}`)
	require.Equal(t, Repaired, outcome)
	assert.Equal(t, map[string]any{"a": nil, "b": json.Number("1")}, got)

	got, outcome = ParseOutcome(`{"a": }`)
	require.Equal(t, Repaired, outcome)
	assert.Equal(t, map[string]any{"a": nil}, got)

	got, outcome = ParseOutcome(`[1,2,]`)
	require.Equal(t, Repaired, outcome)
	assert.Equal(t, []any{json.Number("1"), json.Number("2"), nil}, got)
}

func TestParse_NonDestructiveOnValidJSON(t *testing.T) {
	t.Parallel()

	valid := []string{
		`{"a":1,"b":"x"}`,
		`[{"cbo":{"codigo":"123","descricao":"Clerk"}},{"nome":"B"}]`,
		`{"msg":"ratio:, tricky:} [x:]"}`,
		`{"list":[1,2,3],"nested":{"k":null}}`,
		`[]`,
	}
	for _, text := range valid {
		direct, outcome := ParseOutcome(text)
		require.Equal(t, Direct, outcome, text)
		assert.Equal(t, direct, Parse(Repair(text)), text)
	}
}

func TestParse_Unrecoverable(t *testing.T) {
	t.Parallel()

	for _, text := range []string{`{"a":1`, `{a:1}`, `{"a":1}}`, `garbage`} {
		got, outcome := ParseOutcome(text)
		assert.Nil(t, got, text)
		assert.Equal(t, Failed, outcome, text)
	}
}

func TestParse_ScalarTextIsNil(t *testing.T) {
	t.Parallel()

	got, outcome := ParseOutcome(` 42 `)
	assert.Nil(t, got)
	assert.Equal(t, Direct, outcome)

	got, outcome = ParseOutcome("   ")
	assert.Nil(t, got)
	assert.Equal(t, Absent, outcome)
}

func TestLooksLikeJSON(t *testing.T) {
	t.Parallel()

	assert.True(t, LooksLikeJSON("  {\"a\":1}"))
	assert.True(t, LooksLikeJSON("[1"))
	assert.False(t, LooksLikeJSON("texto"))
	assert.False(t, LooksLikeJSON(12))
	assert.False(t, LooksLikeJSON(nil))
}
