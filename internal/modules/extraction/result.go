package extraction

const (
	EngineTesseract = "tesseract"
	EngineGCPVision = "gcp_vision"
	EngineGCPDocAI  = "gcp_documentai"
	EnginePDFToText = "pdftotext"
)

const (
	SourceImage   = "image"
	SourcePDFText = "pdf_text"
	SourcePDFOCR  = "pdf_ocr"
	SourceText    = "text"
)

// Result is the outcome of one extraction call.
type Result struct {
	Text   string `json:"text" yaml:"text"`
	Engine string `json:"engine" yaml:"engine"`
	Source string `json:"source" yaml:"source"`
	// Languages lists the winning language specs in first-success order.
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	PageCount int      `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	UsedOCR   bool     `json:"used_ocr" yaml:"used_ocr"`
}

// Metadata flattens the result for storage next to a document.
func (r *Result) Metadata() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	m := map[string]any{
		"engine":   r.Engine,
		"source":   r.Source,
		"used_ocr": r.UsedOCR,
	}
	if len(r.Languages) > 0 {
		m["languages"] = append([]string(nil), r.Languages...)
	}
	if r.PageCount > 0 {
		m["page_count"] = r.PageCount
	}
	return m
}
