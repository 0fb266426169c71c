package docseal

import (
	"encoding/json"
	"fmt"

	"github.com/docseal/client-go/internal/crypto"
)

const (
	fallbackSignatureAlgorithm = "RS256"
	fallbackKeyAlgorithm       = crypto.RSAOAEP256
	fallbackContentAlgorithm   = crypto.A256GCM
)

// KeyRegistry is an immutable set of named keys plus the algorithm choices
// used by a Service. It is safe for concurrent use.
type KeyRegistry struct {
	keys   map[string]*Key
	order  []string
	holder *Key

	sigAlg   string
	keyAlg   string
	encAlg   string
	logLevel LogLevel
}

// NewKeyRegistry validates cfg and loads its key set. Malformed material,
// duplicate ids and an unknown holder id are reported here rather than at
// first use. A configuration without keys yields an empty registry.
func NewKeyRegistry(cfg Config) (*KeyRegistry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keys, err := parseKeySet(cfg.JWKS)
	if err != nil {
		return nil, err
	}

	r := &KeyRegistry{
		keys:     make(map[string]*Key, len(keys)),
		order:    make([]string, 0, len(keys)),
		logLevel: cfg.LogLevel,
	}
	for _, k := range keys {
		if _, dup := r.keys[k.id]; dup {
			return nil, &ConfigError{Field: "jwks", Message: fmt.Sprintf("duplicate kid %q", k.id)}
		}
		r.keys[k.id] = k
		r.order = append(r.order, k.id)
	}

	if cfg.HolderKeyID != "" {
		holder, ok := r.keys[cfg.HolderKeyID]
		if !ok {
			return nil, &ConfigError{Field: "holder_key_id", Message: fmt.Sprintf("kid %q not in key set", cfg.HolderKeyID)}
		}
		if !holder.HasPrivate() {
			return nil, &ConfigError{Field: "holder_key_id", Message: fmt.Sprintf("kid %q has no private material", cfg.HolderKeyID)}
		}
		r.holder = holder
	} else {
		for _, id := range r.order {
			if k := r.keys[id]; k.HasPrivate() {
				r.holder = k
				break
			}
		}
	}

	r.sigAlg = firstNonEmpty(cfg.SignatureAlgorithm, r.holderDefault((*Key).defaultSignatureAlgorithm), fallbackSignatureAlgorithm)
	r.keyAlg = firstNonEmpty(cfg.KeyAlgorithm, r.holderDefault((*Key).defaultKeyAlgorithm), fallbackKeyAlgorithm)
	r.encAlg = firstNonEmpty(cfg.ContentAlgorithm, fallbackContentAlgorithm)

	return r, nil
}

func (r *KeyRegistry) holderDefault(f func(*Key) string) string {
	if r.holder == nil {
		return ""
	}
	return f(r.holder)
}

// Resolve returns the key with the given id.
func (r *KeyRegistry) Resolve(kid string) (*Key, error) {
	if k, ok := r.keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
}

// HolderKey returns the local key, if one is configured.
func (r *KeyRegistry) HolderKey() (*Key, bool) {
	return r.holder, r.holder != nil
}

// SignatureAlgorithm returns the JWS algorithm used for signing.
func (r *KeyRegistry) SignatureAlgorithm() string { return r.sigAlg }

// KeyAlgorithm returns the JWE key management algorithm.
func (r *KeyRegistry) KeyAlgorithm() string { return r.keyAlg }

// ContentAlgorithm returns the JWE content encryption algorithm.
func (r *KeyRegistry) ContentAlgorithm() string { return r.encAlg }

// Len returns the number of keys.
func (r *KeyRegistry) Len() int { return len(r.order) }

// KeyIDs returns key ids in declaration order.
func (r *KeyRegistry) KeyIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// PublicKeySet returns the public half of every asymmetric key as a JWKS.
// Symmetric keys are never published.
func (r *KeyRegistry) PublicKeySet() ([]byte, error) {
	set := jwkSet{Keys: make([]json.RawMessage, 0, len(r.order))}
	for _, id := range r.order {
		raw, ok, err := marshalPublicJWK(r.keys[id])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", id, err)
		}
		if ok {
			set.Keys = append(set.Keys, raw)
		}
	}
	return json.Marshal(set)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
