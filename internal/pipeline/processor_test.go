package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/consolidate"
	"github.com/santiagocaneppa/Interview-project/internal/extract"
	"github.com/santiagocaneppa/Interview-project/internal/llm"
	"github.com/santiagocaneppa/Interview-project/internal/normalize"
	"github.com/santiagocaneppa/Interview-project/internal/ocr"
	"github.com/santiagocaneppa/Interview-project/internal/pdftext"
)

type classifierFunc func(ctx context.Context, path string) (constants.DocumentType, error)

func (f classifierFunc) Classify(ctx context.Context, path string) (constants.DocumentType, error) {
	return f(ctx, path)
}

func always(t constants.DocumentType) Classifier {
	return classifierFunc(func(context.Context, string) (constants.DocumentType, error) { return t, nil })
}

type stubReader struct {
	doc *pdftext.Document
	err error
}

func (s stubReader) Read(context.Context, string) (*pdftext.Document, error) { return s.doc, s.err }

type stubOCR struct{ pages []string }

func (s stubOCR) ExtractPages(context.Context, string) (ocr.PagesResult, error) {
	return ocr.PagesResult{Pages: s.pages}, nil
}

type extractorFunc func(ctx context.Context, path string) (*extract.RawExtraction, error)

func (f extractorFunc) Extract(ctx context.Context, path string) (*extract.RawExtraction, error) {
	return f(ctx, path)
}

func modelReplying(reply string) *normalize.Normalizer {
	return normalize.NewNormalizer(normalize.Config{Lenient: true},
		llm.CompleterFunc(func(context.Context, llm.CompletionRequest) (string, error) { return reply, nil }), nil)
}

const twoRows = `[
 {"nome_empreendimento":"Nome do Empreendimento","unidade":"101","disponibilidade":"Disponível","valor":"350.000,00","observações":null},
 {"nome_empreendimento":"Nome do Empreendimento","unidade":"102","disponibilidade":"Vendido","valor":"Indeterminado","observações":"Garden"}
]`

type env struct {
	in, out, scratch string
}

func newEnv(t *testing.T, pdfs ...string) env {
	t.Helper()
	root := t.TempDir()
	e := env{
		in:      filepath.Join(root, "in"),
		out:     filepath.Join(root, "out"),
		scratch: filepath.Join(root, "scratch"),
	}
	require.NoError(t, os.MkdirAll(e.in, 0o755))
	require.NoError(t, os.MkdirAll(e.out, 0o755))
	for _, name := range pdfs {
		require.NoError(t, os.WriteFile(filepath.Join(e.in, name), []byte("%PDF-1.4\n"), 0o644))
	}
	return e
}

func (e env) processor(c Classifier, r extract.Router, n Normalizer, opts ...Option) *Processor {
	return NewProcessor(Config{ScratchDir: e.scratch}, c, r, n, consolidate.NewCSVWriter(nil), nil, opts...)
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, en := range entries {
		assert.False(t, en.IsDir(), "scratch copy left behind: %s", en.Name())
	}
}

func TestProcessDirectory_TableDocument(t *testing.T) {
	e := newEnv(t, "Residencial Solar.pdf", "notes.txt")
	table := extract.NewTableExtractor(stubReader{doc: &pdftext.Document{Pages: []pdftext.Page{{
		Number: 1,
		Text:   "Tabela de vendas",
		Tables: [][][]string{{
			{"nome_empreendimento", "unidade", "disponibilidade", "valor"},
			{"Solar", "101", "Disponível", "350.000,00"},
			{"Solar", "102", "Vendido", "-"},
		}},
	}}}}, nil)
	p := e.processor(always(constants.TypeTable), extract.Router{Table: table}, modelReplying(twoRows))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Discovered)
	assert.Equal(t, 1, sum.Merged)
	assert.Equal(t, 2, sum.Records)
	assert.Equal(t, filepath.Join(e.out, constants.DefaultOutputFile), sum.OutputCSV)

	b, err := os.ReadFile(sum.OutputCSV)
	require.NoError(t, err)
	assert.Equal(t,
		"nome_empreendimento;unidade;disponibilidade;valor;observações\n"+
			"Residencial_Solar;101;Disponível;350000.00;\n"+
			"Residencial_Solar;102;Vendido;Indeterminado;Garden\n",
		string(b))

	sf, err := ReadSideFile(filepath.Join(e.scratch, "Residencial Solar.json"))
	require.NoError(t, err)
	assert.Len(t, sf.Records, 2)
	assert.Equal(t, constants.TypeTable, sf.Type)
	assertScratchEmpty(t, e.scratch)
}

func TestProcessDirectory_ImageWithNoRecordsWritesNothing(t *testing.T) {
	e := newEnv(t, "scan.pdf")
	image := extract.NewOCRExtractor(stubOCR{pages: []string{"TABELA ILEGIVEL"}}, nil)
	p := e.processor(always(constants.TypeImage), extract.Router{Image: image}, modelReplying(`[]`))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Empty(t, sum.OutputCSV)
	assert.NoFileExists(t, filepath.Join(e.out, constants.DefaultOutputFile))
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, constants.DocStateSkipped, sum.Outcomes[0].Document.State)
	assertScratchEmpty(t, e.scratch)
}

func TestProcessDirectory_MixedSurvivesFailingTableSide(t *testing.T) {
	e := newEnv(t, "mix.pdf")
	table := extract.NewTableExtractor(stubReader{err: errors.New("malformed xref")}, nil)
	image := extract.NewOCRExtractor(stubOCR{pages: []string{"Apto 101 disponível 350.000,00"}}, nil)
	mixed := extract.NewMixedExtractor(table, image, nil)
	p := e.processor(always(constants.TypeMixed), extract.Router{Table: table, Image: image, Mixed: mixed}, modelReplying(twoRows))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Merged)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, constants.DocStateMerged, sum.Outcomes[0].Document.State)
	assert.FileExists(t, sum.OutputCSV)
}

func TestProcessDirectory_IsolatesFailures(t *testing.T) {
	e := newEnv(t, "a.pdf", "b.pdf", "c.pdf")
	classifier := classifierFunc(func(_ context.Context, path string) (constants.DocumentType, error) {
		if filepath.Base(path) == "a.pdf" {
			return constants.TypeUnknown, errors.New("unrecognized classification label")
		}
		return constants.TypeTable, nil
	})
	table := extractorFunc(func(_ context.Context, path string) (*extract.RawExtraction, error) {
		if filepath.Base(path) == "b.pdf" {
			panic("corrupt stream")
		}
		return &extract.RawExtraction{Kind: constants.TypeTable, Context: []string{"x"}}, nil
	})
	p := e.processor(classifier, extract.Router{Table: table}, modelReplying(twoRows))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Discovered)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 1, sum.Merged)
	assert.Equal(t, 2, sum.Records)

	assert.Equal(t, "a", sum.Outcomes[0].Document.Name)
	assert.ErrorContains(t, sum.Outcomes[0].Err, "classify")
	assert.ErrorContains(t, sum.Outcomes[1].Err, "panic")
	assert.Equal(t, constants.DocStateSkipped, sum.Outcomes[1].Document.State)
	assertScratchEmpty(t, e.scratch)
}

func TestProcessDirectory_StructuralErrorSkips(t *testing.T) {
	e := newEnv(t, "a.pdf")
	table := extractorFunc(func(context.Context, string) (*extract.RawExtraction, error) {
		return &extract.RawExtraction{Kind: constants.TypeTable, Context: []string{"x"}}, nil
	})
	p := e.processor(always(constants.TypeTable), extract.Router{Table: table}, modelReplying("não sei"))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	var se *normalize.StructuralError
	assert.ErrorAs(t, sum.Outcomes[0].Err, &se)
	assert.NotEmpty(t, sum.Outcomes[0].SideFile)
}

func TestProcessDirectory_DirectoryErrors(t *testing.T) {
	e := newEnv(t, "a.pdf")
	called := false
	c := classifierFunc(func(context.Context, string) (constants.DocumentType, error) {
		called = true
		return constants.TypeTable, nil
	})
	p := e.processor(c, extract.Router{}, modelReplying(`[]`))

	_, err := p.ProcessDirectory(context.Background(), filepath.Join(e.in, "missing"), e.out)
	assert.ErrorIs(t, err, ErrInputDir)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = p.ProcessDirectory(context.Background(), e.in, filepath.Join(e.out, "missing"))
	assert.ErrorIs(t, err, ErrOutputDir)

	_, err = p.ProcessDirectory(context.Background(), filepath.Join(e.in, "a.pdf"), e.out)
	assert.ErrorIs(t, err, ErrInputDir)
	assert.False(t, called)
}

type memLedger struct {
	mu     sync.Mutex
	states map[uuid.UUID][]constants.DocState
	final  map[uuid.UUID]constants.DocState
	runIDs []string
}

func (l *memLedger) Start(_ context.Context, runID, _, _ string) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.runIDs = append(l.runIDs, runID)
	l.states[id] = []constants.DocState{constants.DocStateDiscovered}
	return id, nil
}

func (l *memLedger) Transition(_ context.Context, id uuid.UUID, s constants.DocState, _ constants.DocumentType) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[id] = append(l.states[id], s)
	return nil
}

func (l *memLedger) Finish(_ context.Context, id uuid.UUID, s constants.DocState, _ int, _ *string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.final[id] = s
	return nil
}

func TestProcessDocument_RecordsTransitions(t *testing.T) {
	e := newEnv(t, "a.pdf")
	table := extractorFunc(func(context.Context, string) (*extract.RawExtraction, error) {
		return &extract.RawExtraction{Kind: constants.TypeTable, Context: []string{"x"}}, nil
	})
	ledger := &memLedger{states: map[uuid.UUID][]constants.DocState{}, final: map[uuid.UUID]constants.DocState{}}
	p := e.processor(always(constants.TypeTable), extract.Router{Table: table}, modelReplying(twoRows), WithLedger(ledger))

	sum, err := p.ProcessDirectory(context.Background(), e.in, e.out)
	require.NoError(t, err)
	require.Len(t, ledger.states, 1)
	for id, states := range ledger.states {
		assert.Equal(t, []constants.DocState{
			constants.DocStateDiscovered,
			constants.DocStateClassified,
			constants.DocStateExtracted,
			constants.DocStateNormalized,
			constants.DocStateMerged,
		}, states)
		assert.Equal(t, constants.DocStateMerged, ledger.final[id])
	}
	assert.Equal(t, []string{sum.RunID}, ledger.runIDs)
}

func TestProcessDocument_ClassifierSeesOriginalFileName(t *testing.T) {
	e := newEnv(t, "Tabela Junho.pdf")
	var seen string
	c := classifierFunc(func(_ context.Context, path string) (constants.DocumentType, error) {
		seen = path
		_, err := os.Stat(path)
		require.NoError(t, err)
		return constants.TypeUnknown, errors.New("stop")
	})
	p := e.processor(c, extract.Router{}, modelReplying(`[]`))

	o := p.ProcessDocument(context.Background(), filepath.Join(e.in, "Tabela Junho.pdf"))
	assert.True(t, o.Skipped())
	assert.Equal(t, "Tabela Junho.pdf", filepath.Base(seen))
	assert.NotEqual(t, e.in, filepath.Dir(seen))
	assert.NoFileExists(t, seen)
}

func TestProcessFiles_AppendsAcrossRuns(t *testing.T) {
	e := newEnv(t, "a.pdf", "b.pdf")
	image := extract.NewOCRExtractor(stubOCR{pages: []string{"Apto 101"}}, nil)
	p := e.processor(always(constants.TypeImage), extract.Router{Image: image}, modelReplying(twoRows))

	for _, name := range []string{"a.pdf", "b.pdf"} {
		sum, err := p.ProcessFiles(context.Background(), []string{filepath.Join(e.in, name)}, e.out)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Merged)
		assert.Equal(t, 2, sum.Records)
	}

	b, err := os.ReadFile(filepath.Join(e.out, constants.DefaultOutputFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(consolidate.Header, ";"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "a;101;"))
	assert.True(t, strings.HasPrefix(lines[4], "b;102;"))
}

func TestProcessFiles_RejectsMissingOutputDir(t *testing.T) {
	e := newEnv(t, "a.pdf")
	p := e.processor(always(constants.TypeImage), extract.Router{}, modelReplying(`[]`))

	_, err := p.ProcessFiles(context.Background(), []string{filepath.Join(e.in, "a.pdf")}, filepath.Join(e.out, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputDir)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

type overlapClassifier struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (c *overlapClassifier) Classify(context.Context, string) (constants.DocumentType, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.maxSeen {
		c.maxSeen = c.active
	}
	c.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return constants.TypeImage, nil
}

func TestProcessor_RunsAreSerialized(t *testing.T) {
	e := newEnv(t, "a.pdf", "b.pdf", "c.pdf", "d.pdf")
	image := extract.NewOCRExtractor(stubOCR{pages: []string{"Apto 101"}}, nil)
	cls := &overlapClassifier{}
	p := e.processor(cls, extract.Router{Image: image}, modelReplying(twoRows))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for _, name := range []string{"a.pdf", "b.pdf"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.ProcessFiles(context.Background(), []string{filepath.Join(e.in, name)}, e.out)
			errs <- err
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := p.ProcessDirectory(context.Background(), e.in, e.out)
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, cls.maxSeen)
	b, err := os.ReadFile(filepath.Join(e.out, constants.DefaultOutputFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "nome_empreendimento;"))
	assert.Equal(t, 1+2*(2+4), strings.Count(string(b), "\n"))
}

func TestProcessor_WaitingRunHonorsContext(t *testing.T) {
	e := newEnv(t, "a.pdf")
	p := e.processor(always(constants.TypeImage), extract.Router{}, modelReplying(`[]`))
	p.slot <- struct{}{}
	defer func() { <-p.slot }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.ProcessFiles(ctx, []string{filepath.Join(e.in, "a.pdf")}, e.out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
