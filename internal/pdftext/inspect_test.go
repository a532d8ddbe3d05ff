package pdftext

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		file      string
		hasImages bool
	}{
		{"table.pdf", false},
		{"scan.pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			info, err := Inspect(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.Equal(t, 1, info.Pages)
			assert.Equal(t, tt.hasImages, info.HasImages)
		})
	}
}

func TestInspectErrors(t *testing.T) {
	_, err := Inspect(filepath.Join("testdata", "missing.pdf"))
	assert.Error(t, err)

	_, err = Inspect(filepath.Join("testdata", "truncated.pdf"))
	assert.Error(t, err)
}
