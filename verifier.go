package docseal

import (
	"errors"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
)

// VerificationStatus is the outcome recorded by Verify.
type VerificationStatus int

const (
	// NotAttempted means no check ran: the token was malformed, the payload
	// has no _metadata object, or the signer key could not be used.
	// _metadata.verified is left absent.
	NotAttempted VerificationStatus = iota
	// Verified means the signature is valid.
	Verified
	// Failed means the signature was checked and does not match.
	Failed
)

func (v VerificationStatus) String() string {
	switch v {
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "not-attempted"
	}
}

var joseSignatureAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.EdDSA,
	jose.HS256, jose.HS384, jose.HS512,
}

// Verify parses a compact token and returns its payload. When the payload
// carries a _metadata object, the signature is checked against the key
// named by the token's kid and the boolean result is written to
// _metadata.verified. A malformed token yields an empty document.
func (s *Service) Verify(token string) (Document, VerificationStatus) {
	lFunc := s.logger.WithField("func", "Verify")

	parsed, err := parseCompact(token)
	if err != nil {
		lFunc.Debugf("malformed token: %s", err)
		return Document{}, NotAttempted
	}

	doc := parsed.payload
	metadata, ok := doc[MetadataMember].(map[string]any)
	if !ok {
		return doc, NotAttempted
	}

	lFunc = lFunc.WithField("kid", parsed.header.Kid)
	key, err := s.registry.Resolve(parsed.header.Kid)
	if err != nil {
		lFunc.Debugf("signer key not resolvable: %s", err)
		return doc, NotAttempted
	}
	if !key.Can(CapVerify) {
		lFunc.Debugf("key cannot verify (capabilities %s)", key.Capabilities())
		return doc, NotAttempted
	}
	if !key.SupportsSignatureAlgorithm(parsed.header.Alg) {
		lFunc.Debugf("key of type %s cannot verify %s", key.Type(), parsed.header.Alg)
		return doc, NotAttempted
	}

	status, err := verifySignature(parsed, key)
	if err != nil {
		lFunc.Debugf("verification not attempted: %s", err)
		return doc, NotAttempted
	}
	if status == Failed {
		lFunc.Infof("signature mismatch for %s token", parsed.header.Alg)
	}

	annotated := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		annotated[k] = v
	}
	annotated[VerifiedMember] = status == Verified
	doc[MetadataMember] = annotated

	return doc, status
}

// verifySignature returns Verified or Failed, or an error when the check
// could not run at all.
func verifySignature(token *compactToken, key *Key) (VerificationStatus, error) {
	if token.header.Alg == crypto.MLDSA65 {
		pub, ok := key.public.(*mldsa65.PublicKey)
		if !ok {
			return NotAttempted, errors.New("key is not an ML-DSA-65 key")
		}
		if err := crypto.Verify(pub, []byte(token.signingInput), token.signature); err != nil {
			return Failed, nil
		}
		return Verified, nil
	}

	jws, err := jose.ParseSigned(token.raw, joseSignatureAlgorithms)
	if err != nil {
		return NotAttempted, err
	}
	if _, err := jws.Verify(key.public); err != nil {
		if errors.Is(err, jose.ErrCryptoFailure) {
			return Failed, nil
		}
		return NotAttempted, err
	}
	return Verified, nil
}
