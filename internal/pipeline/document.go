package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/entity"
)

// Document is one input PDF for the duration of a run.
type Document struct {
	Name        string // file name without extension
	SourcePath  string
	ScratchPath string
	Type        constants.DocumentType
	State       constants.DocState
}

func NewDocument(path string) *Document {
	base := filepath.Base(path)
	return &Document{
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		SourcePath: path,
		State:      constants.DocStateDiscovered,
	}
}

func (d *Document) advance(to constants.DocState) error {
	if !constants.CanTransition(d.State, to) {
		return fmt.Errorf("illegal transition %s -> %s", d.State, to)
	}
	d.State = to
	return nil
}

// DocumentName derives the development name stamped on records: accents removed and
// spaces replaced by underscores.
func DocumentName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, stem)
	if err != nil {
		out = stem
	}
	return strings.Join(strings.Fields(out), "_")
}

var genericNames = map[string]struct{}{
	"":                       {},
	"nome do empreendimento": {},
	"empreendimento":         {},
	"indeterminado":          {},
	"n/a":                    {},
	"na":                     {},
	"-":                      {},
	"null":                   {},
	"none":                   {},
	"desconhecido":           {},
}

// IsGenericName reports whether a development name carries no information.
func IsGenericName(name string) bool {
	_, ok := genericNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// stampNames fills generic development names with name. It returns how many records changed.
func stampNames(records []entity.Record, name string) int {
	n := 0
	for i := range records {
		if IsGenericName(records[i].DevelopmentName) {
			records[i].DevelopmentName = name
			n++
		}
	}
	return n
}
