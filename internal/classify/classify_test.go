package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/llm"
	"github.com/santiagocaneppa/Interview-project/internal/probe"
)

type fixedProber probe.Result

func (p fixedProber) Probe(context.Context, string) probe.Result { return probe.Result(p) }

type countingCompleter struct {
	reply string
	err   error
	calls int
	last  llm.CompletionRequest
}

func (c *countingCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	c.calls++
	c.last = req
	return c.reply, c.err
}

func TestClassify_DefiniteProbeSkipsModel(t *testing.T) {
	for _, typ := range constants.DefiniteTypes {
		t.Run(string(typ), func(t *testing.T) {
			cc := &countingCompleter{reply: "IMAGE"}
			c := NewClassifier(fixedProber{Type: typ}, cc, nil)

			got, err := c.Classify(context.Background(), "/in/doc.pdf")
			require.NoError(t, err)
			assert.Equal(t, typ, got)
			assert.Zero(t, cc.calls)
		})
	}
}

func TestClassify_UnknownAsksOnce(t *testing.T) {
	cc := &countingCompleter{reply: "  MIXED\n"}
	c := NewClassifier(fixedProber{Type: constants.TypeUnknown}, cc, nil)

	got, err := c.Classify(context.Background(), "/in/Tabela Solar.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.TypeMixed, got)
	assert.Equal(t, 1, cc.calls)
	assert.Contains(t, cc.last.User, "Tabela Solar.pdf")
}

func TestClassify_RejectsAnythingButAToken(t *testing.T) {
	for _, reply := range []string{"TEXTO", "table", "TABLE.", "It is a TABLE", ""} {
		t.Run(reply, func(t *testing.T) {
			cc := &countingCompleter{reply: reply}
			c := NewClassifier(fixedProber{Type: constants.TypeUnknown}, cc, nil)

			got, err := c.Classify(context.Background(), "/in/doc.pdf")
			assert.ErrorIs(t, err, ErrUnrecognizedLabel)
			assert.Equal(t, constants.TypeUnknown, got)
			assert.Equal(t, 1, cc.calls)
		})
	}
}

func TestClassify_CompleterFailure(t *testing.T) {
	boom := errors.New("network down")
	cc := &countingCompleter{err: boom}
	c := NewClassifier(fixedProber{Type: constants.TypeUnknown}, cc, nil)

	_, err := c.Classify(context.Background(), "/in/doc.pdf")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cc.calls)
}

func TestClassify_LongReplyKeepsValidUTF8(t *testing.T) {
	reply := "x" + strings.Repeat("é", 100)
	cc := &countingCompleter{reply: reply}
	c := NewClassifier(fixedProber{Type: constants.TypeUnknown}, cc, nil)

	_, err := c.Classify(context.Background(), "/in/doc.pdf")
	require.ErrorIs(t, err, ErrUnrecognizedLabel)
	assert.NotContains(t, err.Error(), `\x`)
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "ação", truncate(" ação ", 4))
	assert.Equal(t, "açã…", truncate("ação", 3))
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("é", 100), 81)))
}
