package tableio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"propostas/internal/model"
)

func cell(t *testing.T, tbl *model.Table, row int, col string) any {
	t.Helper()
	v, ok := tbl.Rows[row].Get(col)
	require.True(t, ok, "column %q missing", col)
	return v
}

func TestReadCSV_SemicolonAutoDetect(t *testing.T) {
	t.Parallel()

	data := "Parceiro;Margens Prev;Status\n" +
		`Banco X;"[{""nome"":""Ana""}]";Aberta` + "\n" +
		"Banco Y;;\n"
	src, err := Read(strings.NewReader(data), FormatCSV, Options{Delimiter: "auto"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Parceiro", "Margens Prev", "Status"}, src.Table.Columns)
	require.Equal(t, 2, src.Table.Len())
	assert.Equal(t, `[{"nome":"Ana"}]`, cell(t, src.Table, 0, "Margens Prev"))
	assert.Nil(t, cell(t, src.Table, 1, "Status"))
	assert.Equal(t, "utf-8", src.Encoding)
}

func TestReadCSV_ShortRowsPaddedLongRowsSkipped(t *testing.T) {
	t.Parallel()

	data := "a,b,c\n1,2\n1,2,3,4\n5,6,7\n"
	src, err := Read(strings.NewReader(data), FormatCSV, Options{Delimiter: ","})
	require.NoError(t, err)

	require.Equal(t, 2, src.Table.Len())
	assert.Nil(t, cell(t, src.Table, 0, "c"))
	assert.Equal(t, "7", cell(t, src.Table, 1, "c"))
	require.Len(t, src.Warnings, 1)
	assert.Equal(t, 3, src.Warnings[0].Row)
}

func TestReadCSV_Windows1252(t *testing.T) {
	t.Parallel()

	data := []byte("Nome;N\xfamero da Proposta\nJo\xe3o;1\n")
	src, err := Read(bytes.NewReader(data), FormatCSV, Options{Delimiter: "auto"})
	require.NoError(t, err)

	assert.Equal(t, "windows-1252", src.Encoding)
	assert.Equal(t, []string{"Nome", "Número da Proposta"}, src.Table.Columns)
	assert.Equal(t, "João", cell(t, src.Table, 0, "Nome"))
}

func TestReadCSV_UTF16WithBOM(t *testing.T) {
	t.Parallel()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Nome,CPF\nAna,1\n"))
	require.NoError(t, err)

	src, err := Read(bytes.NewReader(data), FormatCSV, Options{Delimiter: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "utf-16", src.Encoding)
	assert.Equal(t, []string{"Nome", "CPF"}, src.Table.Columns)
	assert.Equal(t, "Ana", cell(t, src.Table, 0, "Nome"))
}

func TestReadCSV_BOMAndHeaderCleanup(t *testing.T) {
	t.Parallel()

	data := "\xEF\xBB\xBF Nome ,,Nome\nA,B,C\n"
	src, err := Read(strings.NewReader(data), FormatCSV, Options{Delimiter: ","})
	require.NoError(t, err)

	assert.Equal(t, "utf-8-bom", src.Encoding)
	assert.Equal(t, []string{"Nome", "Unnamed: 1", "Nome.1"}, src.Table.Columns)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader(""), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable([]string{"Nome", "Valor", "Vazio"})
	tbl.Append(model.RowOf("Nome", "Ana", "Valor", 1.5))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, tbl, Options{Delimiter: ";"}))

	assert.Equal(t, "\xEF\xBB\xBFNome;Valor;Vazio\nAna;1.5;\n", buf.String())
}

func TestDelimiterRune(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ';', delimiterRune("auto", "a;b;c"))
	assert.Equal(t, ',', delimiterRune("auto", "a,b;c,d"))
	assert.Equal(t, '\t', delimiterRune("auto", "a\tb\tc"))
	assert.Equal(t, '\t', delimiterRune("tab", "a,b"))
	assert.Equal(t, ',', delimiterRune("", ""))
}

func TestDelimiterRune_IgnoresQuotedSeparators(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ';', delimiterRune("auto", `"Nome, completo";"Margens Prev"`))
	assert.Equal(t, ',', delimiterRune("auto", `"a;b;c",d`))
	assert.Equal(t, ';', delimiterRune("auto", `"say ""x, y""";z`))
}

func TestReadCSV_QuotedCommaInHeader(t *testing.T) {
	t.Parallel()

	data := "\"Nome, completo\";Margens Prev\nAna;\"{\"\"nome\"\":\"\"Ana\"\"}\"\n"
	src, err := Read(strings.NewReader(data), FormatCSV, Options{Delimiter: "auto"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome, completo", "Margens Prev"}, src.Table.Columns)
	require.Equal(t, 1, src.Table.Len())
	assert.Equal(t, []any{"Ana", `{"nome":"Ana"}`}, src.Table.Cells(0))
}
