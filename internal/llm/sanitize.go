package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/santiagocaneppa/Interview-project/constants"
)

var (
	rePrice     = regexp.MustCompile(PricePattern)
	reCodeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	reDigits    = regexp.MustCompile(`^\d+$`)
)

// ErrNotArray is returned when the reply is valid JSON but not a list.
var ErrNotArray = errors.New("reply is not a JSON array")

var keyAliases = map[string]string{
	"observacoes":    KeyRemarks,
	"observação":     KeyRemarks,
	"observacao":     KeyRemarks,
	"obs":            KeyRemarks,
	"empreendimento": KeyDevelopment,
	"unidades":       KeyUnit,
	"status":         KeyAvailability,
	"preco":          KeyPrice,
	"preço":          KeyPrice,
}

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := reCodeFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// SanitizeRecords repairs the common ways a model bends the record contract so the reply can
// pass schema validation: aliased keys, missing sentinel keys, loose availability labels,
// numeric or unformatted prices, empty remarks. Rows without a unit are dropped.
// Returns the repaired JSON and a list of what changed.
func SanitizeRecords(doc []byte) ([]byte, []string, error) {
	var top any
	if err := json.Unmarshal([]byte(StripCodeFence(string(doc))), &top); err != nil {
		return nil, nil, err
	}
	rows, ok := top.([]any)
	if !ok {
		return nil, nil, ErrNotArray
	}

	var changed []string
	out := make([]any, 0, len(rows))
	for i, raw := range rows {
		m, ok := raw.(map[string]any)
		if !ok {
			changed = append(changed, fmt.Sprintf("row %d: not an object, dropped", i))
			continue
		}
		rec, notes := sanitizeRow(m)
		for _, n := range notes {
			changed = append(changed, fmt.Sprintf("row %d: %s", i, n))
		}
		if rec == nil {
			continue
		}
		out = append(out, rec)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, nil, err
	}
	return b, changed, nil
}

func sanitizeRow(m map[string]any) (map[string]any, []string) {
	var notes []string
	rec := map[string]any{}
	keys := slices.Sorted(maps.Keys(m))

	// Canonical keys first; an alias only fills a key the row does not already carry.
	var aliased []string
	for _, k := range keys {
		key := strings.TrimSpace(k)
		switch key {
		case KeyDevelopment, KeyUnit, KeyAvailability, KeyPrice, KeyRemarks:
			rec[key] = m[k]
		default:
			aliased = append(aliased, k)
		}
	}
	for _, k := range aliased {
		key := strings.TrimSpace(k)
		canonical, ok := keyAliases[strings.ToLower(key)]
		if !ok {
			notes = append(notes, "dropped "+key)
			continue
		}
		if _, taken := rec[canonical]; taken {
			notes = append(notes, "dropped "+key+", "+canonical+" already set")
			continue
		}
		notes = append(notes, "renamed "+key)
		rec[canonical] = m[k]
	}

	unit := asString(rec[KeyUnit])
	if unit == "" {
		return nil, append(notes, "no unit, dropped")
	}
	rec[KeyUnit] = unit
	rec[KeyDevelopment] = asString(rec[KeyDevelopment])

	avail, ok := constants.CanonicalizeAvailability(asString(rec[KeyAvailability]))
	if !ok && asString(rec[KeyAvailability]) != "" {
		notes = append(notes, "availability "+asString(rec[KeyAvailability])+" -> "+string(avail))
	}
	rec[KeyAvailability] = string(avail)

	price, ok := FormatPrice(priceString(rec[KeyPrice]))
	if !ok {
		notes = append(notes, "price unparsable, set to "+constants.Unknown)
	}
	rec[KeyPrice] = price

	remarks := asString(rec[KeyRemarks])
	if remarks == "" || strings.EqualFold(remarks, "null") {
		rec[KeyRemarks] = nil
	} else {
		rec[KeyRemarks] = remarks
	}
	return rec, notes
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func priceString(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return asString(v)
}

// FormatPrice rewrites a price into "000.000,00". Unknown or unparsable input maps to the
// sentinel; ok is false only for input that looked like a price but could not be parsed.
func FormatPrice(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "r$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	switch strings.ToLower(s) {
	case "", "-", "n/a", "null", "indeterminado", "consultar", "sobconsulta":
		return constants.Unknown, true
	}
	if rePrice.MatchString(s) {
		return s, true
	}

	intPart, cents, ok := splitAmount(s)
	if !ok {
		return constants.Unknown, false
	}
	return groupThousands(intPart) + "," + cents, true
}

// splitAmount finds the decimal separator: the last of "." or "," when followed by one or
// two digits; otherwise every separator is a thousands mark.
func splitAmount(s string) (string, string, bool) {
	idx := strings.LastIndexAny(s, ".,")
	intPart, cents := s, "00"
	if idx >= 0 {
		tail := s[idx+1:]
		if len(tail) == 1 || len(tail) == 2 {
			intPart, cents = s[:idx], tail
			if len(cents) == 1 {
				cents += "0"
			}
		}
	}
	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	if intPart == "" {
		intPart = "0"
	}
	if !reDigits.MatchString(intPart) || !reDigits.MatchString(cents) {
		return "", "", false
	}
	return intPart, cents, true
}

func groupThousands(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
