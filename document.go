package docseal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Reserved document members.
const (
	// AccessMember lists the key ids allowed to decrypt the document.
	AccessMember = "access"
	// MetadataMember is the object that receives verification results.
	MetadataMember = "_metadata"
	// VerifiedMember is written into MetadataMember by Verify.
	VerifiedMember = "verified"
)

// Document is a JSON object. Numbers are kept as json.Number so documents
// survive a round trip without precision loss.
type Document map[string]any

// ParseDocument decodes data, which must hold exactly one JSON object.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	return doc, nil
}

// Bytes serializes the document. Members are written in sorted key order.
func (d Document) Bytes() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(d))
}

// Access returns the document's access list. Non-string entries are
// dropped and a non-array member counts as empty.
func (d Document) Access() ([]string, error) {
	raw, ok := d[AccessMember]
	if !ok || raw == nil {
		return nil, nil
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		return append([]string(nil), v...), nil
	default:
		return nil, fmt.Errorf("%s member is %T, not an array", AccessMember, raw)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if id, ok := item.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// replaceWith swaps the members of d for those of other.
func (d Document) replaceWith(other map[string]any) {
	for k := range d {
		delete(d, k)
	}
	for k, v := range other {
		d[k] = v
	}
}
