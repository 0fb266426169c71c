package docseal

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
)

// typJOSEJSON is the "typ" of a JWE in JSON serialization.
const typJOSEJSON = "JOSE+JSON"

// Envelope is a JWE in general JSON serialization. All recipients share one
// content-encryption key, IV and ciphertext; only the wrapped key differs.
type Envelope struct {
	Protected   string          `json:"protected"`
	Unprotected *EnvelopeHeader `json:"unprotected,omitempty"`
	Recipients  []Recipient     `json:"recipients"`
	AAD         string          `json:"aad,omitempty"`
	IV          string          `json:"iv"`
	Ciphertext  string          `json:"ciphertext"`
	Tag         string          `json:"tag"`
}

// Recipient is one per-recipient entry of an Envelope.
type Recipient struct {
	Header       *EnvelopeHeader `json:"header,omitempty"`
	EncryptedKey string          `json:"encrypted_key,omitempty"`
}

// EnvelopeHeader holds the JWE header parameters this package reads or
// writes. The same shape is used for the protected, shared and
// per-recipient headers.
type EnvelopeHeader struct {
	Alg string           `json:"alg,omitempty"`
	Enc string           `json:"enc,omitempty"`
	Zip string           `json:"zip,omitempty"`
	Typ string           `json:"typ,omitempty"`
	Kid string           `json:"kid,omitempty"`
	EPK *jose.JSONWebKey `json:"epk,omitempty"`
	APU string           `json:"apu,omitempty"`
	APV string           `json:"apv,omitempty"`
	// EK carries the ML-KEM ciphertext for ML-KEM-768+A256KW.
	EK string `json:"ek,omitempty"`
}

// envelopeJSON also accepts the flattened serialization, which go-jose and
// other libraries produce for a single recipient.
type envelopeJSON struct {
	Envelope
	Header       *EnvelopeHeader `json:"header,omitempty"`
	EncryptedKey string          `json:"encrypted_key,omitempty"`
}

// ParseEnvelope decodes a JWE in general or flattened JSON serialization.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecryptionError{Stage: StageParse, Err: err}
	}

	env := raw.Envelope
	if len(env.Recipients) == 0 && (raw.Header != nil || raw.EncryptedKey != "") {
		env.Recipients = []Recipient{{Header: raw.Header, EncryptedKey: raw.EncryptedKey}}
	}

	switch {
	case env.Protected == "":
		return nil, &DecryptionError{Stage: StageParse, Message: "missing protected header"}
	case len(env.Recipients) == 0:
		return nil, &DecryptionError{Stage: StageParse, Message: "no recipients"}
	case env.IV == "" || env.Ciphertext == "" || env.Tag == "":
		return nil, &DecryptionError{Stage: StageParse, Message: "missing iv, ciphertext or tag"}
	}
	return &env, nil
}

// Bytes returns the general JSON serialization.
func (e *Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// Document returns the envelope members as a Document.
func (e *Envelope) Document() (Document, error) {
	data, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// protectedHeader decodes the integrity-protected header.
func (e *Envelope) protectedHeader() (*EnvelopeHeader, error) {
	data, err := crypto.FromBase64URL(e.Protected)
	if err != nil {
		return nil, errors.New("protected header is not base64url")
	}
	var h EnvelopeHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("protected header: %w", err)
	}
	return &h, nil
}

// contentAAD is the additional authenticated data of the content
// encryption.
func (e *Envelope) contentAAD() []byte {
	if e.AAD == "" {
		return []byte(e.Protected)
	}
	return []byte(e.Protected + "." + e.AAD)
}

// mergeHeaders overlays headers in increasing precedence; later non-empty
// fields win.
func mergeHeaders(headers ...*EnvelopeHeader) EnvelopeHeader {
	var out EnvelopeHeader
	for _, h := range headers {
		if h == nil {
			continue
		}
		out.Alg = firstNonEmpty(h.Alg, out.Alg)
		out.Enc = firstNonEmpty(h.Enc, out.Enc)
		out.Zip = firstNonEmpty(h.Zip, out.Zip)
		out.Typ = firstNonEmpty(h.Typ, out.Typ)
		out.Kid = firstNonEmpty(h.Kid, out.Kid)
		out.APU = firstNonEmpty(h.APU, out.APU)
		out.APV = firstNonEmpty(h.APV, out.APV)
		out.EK = firstNonEmpty(h.EK, out.EK)
		if h.EPK != nil {
			out.EPK = h.EPK
		}
	}
	return out
}

// wrappedKey decodes the key management inputs of a recipient.
func wrappedKey(r Recipient, h EnvelopeHeader) (*crypto.WrappedKey, error) {
	var (
		w   crypto.WrappedKey
		err error
	)
	if w.EncryptedKey, err = crypto.FromBase64URL(r.EncryptedKey); err != nil {
		return nil, errors.New("encrypted_key is not base64url")
	}
	if h.EPK != nil {
		pub, ok := h.EPK.Key.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("epk is %T, not an EC public key", h.EPK.Key)
		}
		w.Ephemeral = pub
	}
	if w.PartyUInfo, err = crypto.FromBase64URL(h.APU); err != nil {
		return nil, errors.New("apu is not base64url")
	}
	if w.PartyVInfo, err = crypto.FromBase64URL(h.APV); err != nil {
		return nil, errors.New("apv is not base64url")
	}
	if w.Encapsulated, err = crypto.FromBase64URL(h.EK); err != nil {
		return nil, errors.New("ek is not base64url")
	}
	return &w, nil
}
