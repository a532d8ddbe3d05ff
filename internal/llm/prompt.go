package llm

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// BuildClassifyPrompt asks for exactly one strategy token, using the file name as the only signal.
func BuildClassifyPrompt(fileName string) CompletionRequest {
	tokens := make([]string, len(constants.DefiniteTypes))
	for i, t := range constants.DefiniteTypes {
		tokens[i] = string(t)
	}
	system := strings.Join([]string{
		"You classify real-estate price-list PDFs by how their content must be extracted.",
		"TABLE: the PDF has a selectable text layer with tabular data.",
		"IMAGE: the PDF is scanned or rendered artwork and needs OCR.",
		"MIXED: both selectable tables and scanned or image content.",
		"Answer with exactly one of: " + strings.Join(tokens, ", ") + ". No punctuation, no explanation.",
	}, "\n")
	return CompletionRequest{
		Purpose: "classify",
		System:  system,
		User:    "File name: " + fileName,
	}
}

// NormalizeInput is the raw material extracted from one document.
type NormalizeInput struct {
	Tables  [][][]string
	Context []string
	OCRText []string
}

// BuildNormalizePrompt serializes whichever sections are present and states the record contract.
func BuildNormalizePrompt(in NormalizeInput) CompletionRequest {
	system := strings.Join([]string{
		"Você organiza dados de tabelas de preços de empreendimentos imobiliários extraídos de PDFs.",
		"Responda SOMENTE com um array JSON válido, sem texto adicional e sem blocos de código.",
		"Cada elemento representa UMA unidade e DEVE conter exatamente as chaves:",
		`"nome_empreendimento" (string), "unidade" (string), "disponibilidade" (string), "valor" (string), "observações" (string ou null).`,
		`"disponibilidade" deve ser um de: ` + quoteJoin(constants.AvailabilityLabels()) + `. Use "Indeterminado" quando não estiver claro.`,
		`"valor" deve estar sempre no formato 000.000,00 (ex.: "492.030,00"). Use "Indeterminado" quando não houver preço.`,
		`"observações" recebe informações adicionais da unidade; use null quando não houver.`,
		"Nenhuma linha pode omitir chaves. Não invente unidades que não aparecem nos dados.",
	}, "\n")

	var b strings.Builder
	b.WriteString("Os dados abaixo foram extraídos de um PDF imobiliário. Tabelas podem estar desalinhadas ")
	b.WriteString("ou quebradas em várias linhas, e parte das informações pode estar apenas no texto. ")
	b.WriteString("Reconstrua uma linha por unidade combinando todas as fontes.\n")

	if len(in.Tables) > 0 {
		b.WriteString("\n### Tabelas extraídas\n")
		b.WriteString(mustJSON(in.Tables))
		b.WriteString("\n")
	}
	if len(in.Context) > 0 {
		b.WriteString("\n### Texto complementar\n")
		b.WriteString(mustJSON(in.Context))
		b.WriteString("\n")
	}
	if len(in.OCRText) > 0 {
		b.WriteString("\n### Texto extraído via OCR\n")
		b.WriteString(mustJSON(in.OCRText))
		b.WriteString("\n")
	}

	b.WriteString("\n### Exemplo de saída\n")
	b.WriteString(`[{"nome_empreendimento": "Residencial Exemplo", "unidade": "204", "disponibilidade": "Disponível", "valor": "492.030,00", "observações": "Garden"},`)
	b.WriteString("\n")
	b.WriteString(` {"nome_empreendimento": "Residencial Exemplo", "unidade": "304", "disponibilidade": "Reservado", "valor": "Indeterminado", "observações": null}]`)
	b.WriteString("\n")

	return CompletionRequest{Purpose: "normalize", System: system, User: b.String()}
}

func quoteJoin(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = `"` + s + `"`
	}
	return strings.Join(q, ", ")
}

// mustJSON keeps accents and <>& readable for the model.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
