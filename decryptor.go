package docseal

import (
	"github.com/docseal/client-go/internal/crypto"
)

// Decrypt opens an envelope addressed to the holder key. The envelope is
// never modified.
func (s *Service) Decrypt(env *Envelope) (Document, error) {
	lFunc := s.logger.WithField("func", "Decrypt")

	holder, ok := s.registry.HolderKey()
	if !ok {
		return nil, &DecryptionError{Stage: StageHolder, Message: "no holder key configured"}
	}
	lFunc = lFunc.WithField("kid", holder.ID())
	if !holder.Can(CapUnwrapKey) {
		return nil, &DecryptionError{Stage: StageHolder, Message: "holder key cannot unwrap keys"}
	}
	if env == nil {
		return nil, &DecryptionError{Stage: StageParse, Message: "nil envelope"}
	}

	protected, err := env.protectedHeader()
	if err != nil {
		return nil, &DecryptionError{Stage: StageParse, Err: err}
	}
	if protected.Zip != "" {
		return nil, &DecryptionError{Stage: StageParse, Message: "compressed payloads are not supported"}
	}
	if protected.Enc == "" {
		return nil, &DecryptionError{Stage: StageParse, Message: "protected header has no enc"}
	}

	match := -1
	var header EnvelopeHeader
	for i, r := range env.Recipients {
		merged := mergeHeaders(protected, env.Unprotected, r.Header)
		if merged.Kid != holder.ID() {
			continue
		}
		if match >= 0 {
			lFunc.Warnf("envelope lists the holder more than once, using entry %d", match)
			break
		}
		match, header = i, merged
	}
	if match < 0 {
		return nil, &DecryptionError{Stage: StageRecipient, Message: "no recipient entry for kid " + holder.ID()}
	}

	wrapped, err := wrappedKey(env.Recipients[match], header)
	if err != nil {
		return nil, &DecryptionError{Stage: StageParse, Err: err}
	}
	cek, err := crypto.UnwrapKey(header.Alg, holder.private, wrapped)
	if err != nil {
		return nil, &DecryptionError{Stage: StageUnwrap, Err: err}
	}

	iv, err := crypto.FromBase64URL(env.IV)
	if err != nil {
		return nil, &DecryptionError{Stage: StageParse, Message: "iv is not base64url"}
	}
	ciphertext, err := crypto.FromBase64URL(env.Ciphertext)
	if err != nil {
		return nil, &DecryptionError{Stage: StageParse, Message: "ciphertext is not base64url"}
	}
	tag, err := crypto.FromBase64URL(env.Tag)
	if err != nil {
		return nil, &DecryptionError{Stage: StageParse, Message: "tag is not base64url"}
	}

	plaintext, err := crypto.OpenContent(protected.Enc, cek, env.contentAAD(), iv, ciphertext, tag)
	if err != nil {
		return nil, &DecryptionError{Stage: StageContent, Err: err}
	}

	doc, err := ParseDocument(plaintext)
	if err != nil {
		return nil, &DecryptionError{Stage: StagePayload, Err: err}
	}

	lFunc.Debugf("envelope decrypted with %s/%s", header.Alg, protected.Enc)
	return doc, nil
}

// DecryptDocument treats doc as an envelope and, on success, replaces its
// members with the decrypted document. On error doc is left untouched.
func (s *Service) DecryptDocument(doc Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return &DecryptionError{Stage: StageParse, Err: err}
	}
	env, err := ParseEnvelope(data)
	if err != nil {
		return err
	}

	plain, err := s.Decrypt(env)
	if err != nil {
		return err
	}
	if doc != nil {
		doc.replaceWith(plain)
	}
	return nil
}
