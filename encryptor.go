package docseal

import (
	"encoding/json"
	"slices"

	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/sirupsen/logrus"
)

// Encrypt builds an envelope for the holder key plus every key listed in
// the document's access member. doc is not modified. If no recipient can
// be resolved it returns an error matching ErrNoRecipients without doing
// any cryptographic work.
func (s *Service) Encrypt(doc Document) (*Envelope, error) {
	lFunc := s.logger.WithField("func", "Encrypt")

	alg := s.registry.KeyAlgorithm()
	enc := s.registry.ContentAlgorithm()

	recipients := s.recipientKeys(doc, alg, lFunc)
	if len(recipients) == 0 {
		return nil, &EncryptionError{Stage: StageRecipients, Message: "no key in access list or holder can receive " + alg}
	}

	plaintext, err := doc.Bytes()
	if err != nil {
		return nil, &EncryptionError{Stage: StageSerialize, Err: err}
	}

	protectedJSON, err := json.Marshal(EnvelopeHeader{Enc: enc, Typ: typJOSEJSON})
	if err != nil {
		return nil, &EncryptionError{Stage: StageSerialize, Err: err}
	}
	protected := crypto.ToBase64URL(protectedJSON)

	cek, err := crypto.GenerateContentKey(enc)
	if err != nil {
		return nil, &EncryptionError{Stage: StageContent, Err: err}
	}

	env := &Envelope{
		Protected:   protected,
		Unprotected: &EnvelopeHeader{Alg: alg},
		Recipients:  make([]Recipient, 0, len(recipients)),
	}
	for _, key := range recipients {
		wrapped, err := crypto.WrapKey(alg, key.public, cek)
		if err != nil {
			return nil, &EncryptionError{Stage: StageWrap, KeyID: key.ID(), Err: err}
		}

		header := &EnvelopeHeader{Kid: key.ID()}
		if wrapped.Ephemeral != nil {
			header.EPK = &jose.JSONWebKey{Key: wrapped.Ephemeral}
		}
		if wrapped.Encapsulated != nil {
			header.EK = crypto.ToBase64URL(wrapped.Encapsulated)
		}
		env.Recipients = append(env.Recipients, Recipient{
			Header:       header,
			EncryptedKey: crypto.ToBase64URL(wrapped.EncryptedKey),
		})
	}

	iv, ciphertext, tag, err := crypto.SealContent(enc, cek, env.contentAAD(), plaintext)
	if err != nil {
		return nil, &EncryptionError{Stage: StageContent, Err: err}
	}
	env.IV = crypto.ToBase64URL(iv)
	env.Ciphertext = crypto.ToBase64URL(ciphertext)
	env.Tag = crypto.ToBase64URL(tag)

	lFunc.Debugf("document encrypted with %s/%s for %d recipients", alg, enc, len(env.Recipients))
	return env, nil
}

// EncryptDocument encrypts doc and replaces its members with the envelope
// members. On error doc is left untouched.
func (s *Service) EncryptDocument(doc Document) error {
	if doc == nil {
		return &EncryptionError{Stage: StageSerialize, Message: "nil document"}
	}

	env, err := s.Encrypt(doc)
	if err != nil {
		return err
	}
	members, err := env.Document()
	if err != nil {
		return &EncryptionError{Stage: StageSerialize, Err: err}
	}

	doc.replaceWith(members)
	return nil
}

// recipientKeys derives the recipient set: the holder first unless the
// access list names it, then each access entry that resolves to a key able
// to receive alg. Entries that cannot be used are skipped.
func (s *Service) recipientKeys(doc Document, alg string, lFunc *logrus.Entry) []*Key {
	access, err := doc.Access()
	if err != nil {
		lFunc.Warnf("ignoring access list: %s", err)
	}

	var keys []*Key
	seen := make(map[string]bool, len(access)+1)
	holder, hasHolder := s.registry.HolderKey()

	// The holder wraps to its own public half, so its declared operations
	// do not gate it.
	add := func(key *Key) bool {
		if key != holder && !key.Can(CapWrapKey) {
			lFunc.WithField("kid", key.ID()).Debugf("skipping recipient: capabilities %s", key.Capabilities())
			return false
		}
		if !key.SupportsKeyAlgorithm(alg) {
			lFunc.WithField("kid", key.ID()).Debugf("skipping recipient: %s key cannot receive %s", key.Type(), alg)
			return false
		}
		keys = append(keys, key)
		return true
	}

	if hasHolder && !slices.Contains(access, holder.ID()) {
		seen[holder.ID()] = true
		add(holder)
	}

	for _, id := range access {
		if seen[id] {
			continue
		}
		seen[id] = true

		key, err := s.registry.Resolve(id)
		if err != nil {
			lFunc.WithField("kid", id).Debugf("skipping recipient: %s", err)
			continue
		}
		add(key)
	}
	return keys
}
