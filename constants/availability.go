package constants

import (
	"strings"
)

// Availability is the sales state of a listed unit. Values are the labels written to the dataset.
type Availability string

const (
	Available    Availability = "Disponível"
	Reserved     Availability = "Reservado"
	Sold         Availability = "Vendido"
	Exchange     Availability = "Permuta"
	Undetermined Availability = "Indeterminado"
)

// Unknown is the sentinel for a price or availability the source does not state.
const Unknown = "Indeterminado"

var allAvailabilities = []Availability{
	Available,
	Reserved,
	Sold,
	Exchange,
	Undetermined,
}

func AvailabilityLabels() []string {
	result := make([]string, len(allAvailabilities))
	for i, a := range allAvailabilities {
		result[i] = string(a)
	}
	return result
}

// CanonicalizeAvailability maps free-form labels (accents optional, pt or en) onto the enum.
func CanonicalizeAvailability(input string) (Availability, bool) {
	if strings.TrimSpace(input) == "" {
		return Undetermined, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Availability{
		"disponivel":   Available,
		"disponíveis":  Available,
		"disponiveis":  Available,
		"livre":        Available,
		"a venda":      Available,
		"à venda":      Available,
		"available":    Available,
		"reservada":    Reserved,
		"reserva":      Reserved,
		"reserved":     Reserved,
		"vendida":      Sold,
		"sold":         Sold,
		"permutado":    Exchange,
		"permutada":    Exchange,
		"exchange":     Exchange,
		"indisponivel": Undetermined,
		"indisponível": Undetermined,
		"undetermined": Undetermined,
		"unknown":      Undetermined,
		"n/a":          Undetermined,
		"-":            Undetermined,
	}

	if a, ok := synonyms[normalized]; ok {
		return a, true
	}

	for _, a := range allAvailabilities {
		if normalized == strings.ToLower(string(a)) {
			return a, true
		}
	}

	return Undetermined, false
}
