package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Report is a scan report document as served by the scanning service. Its
// fields are never inspected individually; values are nested maps, slices
// and scalars (numbers kept as json.Number).
type Report map[string]any

// ParseReport decodes a single JSON object into a Report.
func ParseReport(data []byte) (Report, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r Report
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("domain: decode report: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("domain: decode report: trailing data after JSON object")
	}
	return r, nil
}

// Serialize renders the report as compact JSON. Map keys are emitted in
// sorted order so the same document always yields the same text.
func (r Report) Serialize() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(r)); err != nil {
		return "", fmt.Errorf("domain: encode report: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
