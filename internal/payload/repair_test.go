package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"missing before comma", `{"a":,"b":1}`, `{"a":null,"b":1}`},
		{"missing before comma with space", `{"a": ,"b":1}`, `{"a":null,"b":1}`},
		{"missing before brace", `{"a": }`, `{"a":null}`},
		{"missing before bracket", `[{"a":]`, `[{"a":null]`},
		{"empty trailing slot", `[1,2,]`, `[1,2,null]`},
		{"nul stripped", "{\"a\":\x00,\"b\":1}", `{"a":null,"b":1}`},
		{"valid untouched", `{"a":1,"b":[1,2]}`, `{"a":1,"b":[1,2]}`},
		{"literal untouched", `{"a":"x:,y:}z"}`, `{"a":"x:,y:}z"}`},
		{"escaped quote", `{"a":"q\":,","b":}`, `{"a":"q\":,","b":null}`},
		{"unterminated literal", `{"a":,"b":"oops:,`, `{"a":null,"b":"oops:,`},
		{"empty", ``, ``},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Repair(tc.in))
		})
	}
}

func TestRepair_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"a":,"b":1}`,
		`{"a": }`,
		`[1,2,]`,
		"{\"a\":\x00,}",
		`{"a":,]`,
		`:,:,`,
		`,,]`,
		`{"x":"a\\":,"}`,
		`not json at all`,
		`{"cbo":{"codigo":,"descricao":"Clerk"},"emprestimosLegados":}`,
	}
	for _, in := range inputs {
		once := Repair(in)
		assert.Equal(t, once, Repair(once), "input %q", in)
	}
}
