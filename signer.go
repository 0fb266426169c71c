package docseal

import (
	"encoding/json"
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
)

// Sign serializes doc and signs it with the holder key as a JWS compact
// token. Signing is best effort: without a usable holder key, or if the
// signature cannot be produced, the serialized document is returned
// unsigned. A document that cannot be serialized at all (for example one
// holding a channel or func value) yields an empty string. doc is not
// modified.
func (s *Service) Sign(doc Document) string {
	payload, err := doc.Bytes()
	if err != nil {
		s.logger.WithField("func", "Sign").Warnf("could not serialize document: %s", err)
		return ""
	}
	return s.SignPayload(payload)
}

// SignPayload signs an already serialized JSON payload. On failure the
// payload is returned as a string.
func (s *Service) SignPayload(payload []byte) string {
	lFunc := s.logger.WithField("func", "Sign")

	holder, ok := s.registry.HolderKey()
	if !ok {
		lFunc.Debug("no holder key configured, payload left unsigned")
		return string(payload)
	}
	lFunc = lFunc.WithField("kid", holder.ID())
	if !holder.Can(CapSign) {
		lFunc.Warnf("holder key cannot sign (capabilities %s), payload left unsigned", holder.Capabilities())
		return string(payload)
	}

	alg := s.registry.SignatureAlgorithm()
	token, err := signCompact(holder, alg, payload)
	if err != nil {
		lFunc.Warnf("could not sign with %s, payload left unsigned: %s", alg, err)
		return string(payload)
	}

	lFunc.Tracef("payload signed with %s", alg)
	return token
}

func signCompact(key *Key, alg string, payload []byte) (string, error) {
	if alg == crypto.MLDSA65 {
		return signMLDSA(key, payload)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.SignatureAlgorithm(alg), Key: key.private},
		(&jose.SignerOptions{}).WithContentType(contentTypeJSON).WithHeader("kid", key.ID()),
	)
	if err != nil {
		return "", err
	}

	obj, err := signer.Sign(payload)
	if err != nil {
		return "", err
	}
	return obj.CompactSerialize()
}

func signMLDSA(key *Key, payload []byte) (string, error) {
	priv, ok := key.private.(*mldsa65.PrivateKey)
	if !ok {
		return "", fmt.Errorf("%s requires an ML-DSA-65 key, have %s", crypto.MLDSA65, key.Type())
	}

	header, err := json.Marshal(jwsHeader{Alg: crypto.MLDSA65, Kid: key.ID(), Cty: contentTypeJSON})
	if err != nil {
		return "", err
	}

	signingInput := crypto.ToBase64URL(header) + "." + crypto.ToBase64URL(payload)
	sig, err := crypto.Sign(priv, []byte(signingInput))
	if err != nil {
		return "", err
	}
	return signingInput + "." + crypto.ToBase64URL(sig), nil
}
