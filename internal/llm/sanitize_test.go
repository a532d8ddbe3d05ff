package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"492.030,00", "492.030,00", true},
		{"R$ 492.030,00", "492.030,00", true},
		{"492030.00", "492.030,00", true},
		{"492030", "492.030,00", true},
		{"1.250.000", "1.250.000,00", true},
		{"1,250,000.5", "1.250.000,50", true},
		{"850,00", "850,00", true},
		{"Indeterminado", "Indeterminado", true},
		{"", "Indeterminado", true},
		{"consultar", "Indeterminado", true},
		{"abc", "Indeterminado", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := FormatPrice(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, StripCodeFence("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[]`, StripCodeFence("  []  "))
}

func TestSanitizeRecords_RepairsRows(t *testing.T) {
	in := "```json\n" + `[
		{"nome_empreendimento": "Vila Nova", "unidade": "101", "disponibilidade": "disponivel", "valor": 350000, "observacoes": ""},
		{"nome_empreendimento": "Vila Nova", "unidade": "102", "status": "VENDIDO", "extra": "x"},
		{"nome_empreendimento": "Vila Nova", "unidade": "", "valor": "1,00"},
		"garbage"
	]` + "\n```"

	out, changed, err := SanitizeRecords([]byte(in))
	require.NoError(t, err)
	assert.NotEmpty(t, changed)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "101", rows[0][KeyUnit])
	assert.Equal(t, "Disponível", rows[0][KeyAvailability])
	assert.Equal(t, "350.000,00", rows[0][KeyPrice])
	assert.Nil(t, rows[0][KeyRemarks])

	assert.Equal(t, "Vendido", rows[1][KeyAvailability])
	assert.Equal(t, "Indeterminado", rows[1][KeyPrice])
	assert.NotContains(t, rows[1], "extra")

	require.NoError(t, ValidateRecordsJSON(out))
}

func TestSanitizeRecords_NotArray(t *testing.T) {
	_, _, err := SanitizeRecords([]byte(`{"unidade": "1"}`))
	assert.ErrorIs(t, err, ErrNotArray)

	_, _, err = SanitizeRecords([]byte(`not json`))
	assert.Error(t, err)
}

func TestSanitizeRecords_CanonicalKeyWinsOverAlias(t *testing.T) {
	in := []byte(`[{"unidade":"101","disponibilidade":"Vendido","valor":"Indeterminado",` +
		`"observações":"Garden","obs":null,"observacoes":"","preço":"1,00","valor_total":"9"}]`)

	// Map iteration order is random; every run must agree.
	for i := 0; i < 100; i++ {
		out, changed, err := SanitizeRecords(in)
		require.NoError(t, err)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(out, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Garden", rows[0][KeyRemarks])
		assert.Equal(t, "Indeterminado", rows[0][KeyPrice])
		assert.Contains(t, changed, "row 0: dropped obs, observações already set")
	}
}

func TestSanitizeRecords_AliasFillsMissingKey(t *testing.T) {
	out, changed, err := SanitizeRecords([]byte(`[{"unidade":"7","obs":"Cobertura","preço":"1.000,00"}]`))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Cobertura", rows[0][KeyRemarks])
	assert.Equal(t, "1.000,00", rows[0][KeyPrice])
	assert.Equal(t, []string{"row 0: renamed obs", "row 0: renamed preço"}, changed)
}
