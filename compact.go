package docseal

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/docseal/client-go/internal/crypto"
)

const contentTypeJSON = "application/json"

// jwsHeader is the protected header of a compact signature.
type jwsHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
	Cty string `json:"cty,omitempty"`
}

// compactToken is a parsed but unverified JWS compact serialization.
type compactToken struct {
	raw          string
	header       jwsHeader
	payload      Document
	signingInput string
	signature    []byte
}

// parseCompact splits and decodes a compact token. The payload must be a
// JSON object.
func parseCompact(token string) (*compactToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("compact token must have three segments")
	}

	headerBytes, err := crypto.FromBase64URL(parts[0])
	if err != nil {
		return nil, errors.New("header is not base64url")
	}
	payloadBytes, err := crypto.FromBase64URL(parts[1])
	if err != nil {
		return nil, errors.New("payload is not base64url")
	}
	signature, err := crypto.FromBase64URL(parts[2])
	if err != nil {
		return nil, errors.New("signature is not base64url")
	}

	var header jwsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, errors.New("header is not a JSON object")
	}
	if header.Alg == "" {
		return nil, errors.New("header has no alg")
	}

	payload, err := ParseDocument(payloadBytes)
	if err != nil {
		return nil, err
	}

	return &compactToken{
		raw:          token,
		header:       header,
		payload:      payload,
		signingInput: parts[0] + "." + parts[1],
		signature:    signature,
	}, nil
}
