package llm

import (
	"github.com/santiagocaneppa/Interview-project/constants"
)

// Dataset keys, in column order.
const (
	KeyDevelopment  = "nome_empreendimento"
	KeyUnit         = "unidade"
	KeyAvailability = "disponibilidade"
	KeyPrice        = "valor"
	KeyRemarks      = "observações"
)

var RecordKeys = []string{KeyDevelopment, KeyUnit, KeyAvailability, KeyPrice, KeyRemarks}

// PricePattern accepts "000.000,00"-style prices or the unknown sentinel.
const PricePattern = `^(\d{1,3}(\.\d{3})*,\d{2}|Indeterminado)$`

// RecordsJSONSchema describes the normalizer reply: an array of complete unit rows.
func RecordsJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			KeyDevelopment:  map[string]any{"type": "string"},
			KeyUnit:         map[string]any{"type": "string", "minLength": 1},
			KeyAvailability: map[string]any{"type": "string", "enum": constants.AvailabilityLabels()},
			KeyPrice:        map[string]any{"type": "string", "pattern": PricePattern},
			KeyRemarks:      map[string]any{"type": []string{"string", "null"}},
		},
		"required": RecordKeys,
	}
	return map[string]any{
		"type":  "array",
		"items": item,
	}
}
