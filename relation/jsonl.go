package relation

import (
	"encoding/json"
	"io"
)

// JSONLWriter writes one JSON value per line.
type JSONLWriter struct {
	encoder *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{encoder: enc}
}

func (w *JSONLWriter) Write(v any) error { return w.encoder.Encode(v) }
