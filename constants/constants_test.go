package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeAvailability(t *testing.T) {
	cases := map[string]Availability{
		"Disponível": Available,
		"disponivel": Available,
		" LIVRE ":    Available,
		"reservada":  Reserved,
		"Vendido":    Sold,
		"sold":       Sold,
		"permutado":  Exchange,
		"-":          Undetermined,
	}
	for in, want := range cases {
		got, ok := CanonicalizeAvailability(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := CanonicalizeAvailability("talvez")
	assert.False(t, ok)
	assert.Equal(t, Undetermined, got)

	got, ok = CanonicalizeAvailability("   ")
	assert.False(t, ok)
	assert.Equal(t, Undetermined, got)
}

func TestAvailabilityLabelsMatchUnknown(t *testing.T) {
	labels := AvailabilityLabels()
	assert.Len(t, labels, 5)
	assert.Contains(t, labels, Unknown)
}

func TestParseDocumentType(t *testing.T) {
	for _, s := range []string{"TABLE", " IMAGE\n", "MIXED"} {
		got, ok := ParseDocumentType(s)
		assert.True(t, ok, s)
		assert.True(t, got.Definite())
	}
	for _, s := range []string{"table", "TABLE.", "The answer is TABLE", "UNKNOWN", ""} {
		got, ok := ParseDocumentType(s)
		assert.False(t, ok, s)
		assert.Equal(t, TypeUnknown, got)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(DocStateDiscovered, DocStateClassified))
	assert.True(t, CanTransition(DocStateNormalized, DocStateMerged))
	assert.False(t, CanTransition(DocStateDiscovered, DocStateExtracted))
	assert.False(t, CanTransition(DocStateClassified, DocStateMerged))

	for _, s := range []DocState{DocStateDiscovered, DocStateClassified, DocStateExtracted, DocStateNormalized} {
		assert.True(t, CanTransition(s, DocStateSkipped), s)
	}
	assert.False(t, CanTransition(DocStateMerged, DocStateSkipped))
	assert.False(t, CanTransition(DocStateSkipped, DocStateDiscovered))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	_, ok := AllowedExtensions[NormalizeExt(".Pdf")]
	assert.True(t, ok)
}
