package constants

import "strings"

// DocumentType is the extraction strategy chosen for a document.
type DocumentType string

const (
	TypeTable   DocumentType = "TABLE"
	TypeImage   DocumentType = "IMAGE"
	TypeMixed   DocumentType = "MIXED"
	TypeUnknown DocumentType = "UNKNOWN"
)

// DefiniteTypes are the categories a classifier may resolve to.
var DefiniteTypes = []DocumentType{TypeTable, TypeImage, TypeMixed}

// ParseDocumentType matches s exactly after trimming surrounding whitespace.
func ParseDocumentType(s string) (DocumentType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range DefiniteTypes {
		if s == string(t) {
			return t, true
		}
	}
	return TypeUnknown, false
}

func (t DocumentType) Definite() bool {
	return t == TypeTable || t == TypeImage || t == TypeMixed
}
