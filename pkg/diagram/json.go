package diagram

import (
	"bytes"
	"encoding/json"
	"io"
)

// MarshalDocument encodes the document as indented JSON. Styles are written
// in their draw.io string form.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON streams the JSON encoding of d to w.
func WriteJSON(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
