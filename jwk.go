package docseal

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
)

// jwkSet keeps members raw so AKP keys, which go-jose does not know, can be
// routed to their own parser.
type jwkSet struct {
	Keys []json.RawMessage `json:"keys"`
}

type jwkHeader struct {
	Kty    string   `json:"kty"`
	Kid    string   `json:"kid"`
	Alg    string   `json:"alg"`
	Use    string   `json:"use"`
	KeyOps []string `json:"key_ops"`
}

// akpJWK is the JSON form of an algorithm key pair (post-quantum) JWK.
type akpJWK struct {
	Kty  string `json:"kty"`
	Kid  string `json:"kid,omitempty"`
	Alg  string `json:"alg"`
	Use  string `json:"use,omitempty"`
	Pub  string `json:"pub"`
	Priv string `json:"priv,omitempty"`
}

// parseKeySet parses a JWKS into keys in declaration order.
func parseKeySet(data []byte) ([]*Key, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var set jwkSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, &ConfigError{Field: "jwks", Message: "not a JSON Web Key Set", Err: err}
	}

	keys := make([]*Key, 0, len(set.Keys))
	for i, raw := range set.Keys {
		key, err := parseKey(raw)
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("jwks.keys[%d]", i), Message: "invalid key", Err: err}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseKey(raw json.RawMessage) (*Key, error) {
	var hdr jwkHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, err
	}
	if hdr.Kid == "" {
		return nil, fmt.Errorf("missing kid")
	}

	var (
		key *Key
		err error
	)
	if KeyType(hdr.Kty) == KeyTypeAKP {
		key, err = parseAKP(raw)
	} else {
		key, err = parseJoseKey(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("kid %q: %w", hdr.Kid, err)
	}

	key.id = hdr.Kid
	key.alg = hdr.Alg
	key.use = hdr.Use
	key.caps = capabilities(key, hdr.Use, hdr.KeyOps)
	return key, nil
}

func parseJoseKey(raw json.RawMessage) (*Key, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	// Valid does not accept symmetric keys.
	if secret, ok := jwk.Key.([]byte); ok {
		if len(secret) == 0 {
			return nil, fmt.Errorf("empty symmetric key")
		}
	} else if !jwk.Valid() {
		return nil, fmt.Errorf("inconsistent key material")
	}

	switch k := jwk.Key.(type) {
	case *rsa.PrivateKey:
		return &Key{kty: KeyTypeRSA, public: &k.PublicKey, private: k}, nil
	case *rsa.PublicKey:
		return &Key{kty: KeyTypeRSA, public: k}, nil
	case *ecdsa.PrivateKey:
		return &Key{kty: KeyTypeEC, public: &k.PublicKey, private: k}, nil
	case *ecdsa.PublicKey:
		return &Key{kty: KeyTypeEC, public: k}, nil
	case ed25519.PrivateKey:
		return &Key{kty: KeyTypeOKP, public: k.Public().(ed25519.PublicKey), private: k}, nil
	case ed25519.PublicKey:
		return &Key{kty: KeyTypeOKP, public: k}, nil
	case []byte:
		return &Key{kty: KeyTypeOct, public: k, private: k}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", jwk.Key)
	}
}

func parseAKP(raw json.RawMessage) (*Key, error) {
	var j akpJWK
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	pub, err := crypto.DecodeBase64(j.Pub)
	if err != nil || len(pub) == 0 {
		return nil, fmt.Errorf("invalid pub")
	}
	var priv []byte
	if j.Priv != "" {
		if priv, err = crypto.DecodeBase64(j.Priv); err != nil {
			return nil, fmt.Errorf("invalid priv")
		}
	}

	switch j.Alg {
	case crypto.MLDSA65:
		pk, err := crypto.ParseSigningPublicKey(pub)
		if err != nil {
			return nil, err
		}
		key := &Key{kty: KeyTypeAKP, public: pk}
		if priv != nil {
			sk, err := crypto.ParseSigningPrivateKey(priv)
			if err != nil {
				return nil, err
			}
			if !pk.Equal(sk.Public()) {
				return nil, fmt.Errorf("priv does not match pub")
			}
			key.private = sk
		}
		return key, nil

	case crypto.MLKEM768:
		var kp *crypto.Keypair
		if len(priv) == crypto.MLKEMSeedSize {
			if kp, err = crypto.KeypairFromSeed(priv); err == nil && !bytes.Equal(kp.PublicKey, pub) {
				return nil, fmt.Errorf("priv does not match pub")
			}
		} else {
			kp, err = crypto.NewKeypairFromBytes(priv, pub)
		}
		if err != nil {
			return nil, err
		}
		key := &Key{kty: KeyTypeAKP, public: &crypto.Keypair{PublicKey: kp.PublicKey}}
		if kp.HasSecret() {
			key.private = kp
		}
		return key, nil

	default:
		return nil, fmt.Errorf("unsupported AKP alg %q", j.Alg)
	}
}

// capabilities limits what the material allows by what the JWK declares:
// key_ops wins over use.
func capabilities(k *Key, use string, keyOps []string) Capability {
	material := CapVerify | CapWrapKey
	if k.private != nil {
		material = capAll
	}
	switch k.public.(type) {
	case ed25519.PublicKey, *mldsa65.PublicKey:
		material &= CapSign | CapVerify
	case *crypto.Keypair:
		material &= CapWrapKey | CapUnwrapKey
	}

	if len(keyOps) > 0 {
		var declared Capability
		for _, op := range keyOps {
			switch op {
			case "sign":
				declared |= CapSign
			case "verify":
				declared |= CapVerify
			case "wrapKey", "encrypt":
				declared |= CapWrapKey
			case "unwrapKey", "decrypt":
				declared |= CapUnwrapKey
			}
		}
		return material & declared
	}

	switch use {
	case "sig":
		return material & (CapSign | CapVerify)
	case "enc":
		return material & (CapWrapKey | CapUnwrapKey)
	}
	return material
}

// marshalPublicJWK returns the public JWK for k. Symmetric keys have no
// public form and report false.
func marshalPublicJWK(k *Key) (json.RawMessage, bool, error) {
	switch pub := k.public.(type) {
	case []byte:
		return nil, false, nil
	case *mldsa65.PublicKey:
		b, err := json.Marshal(akpJWK{Kty: string(KeyTypeAKP), Kid: k.id, Alg: crypto.MLDSA65, Use: k.use, Pub: crypto.ToBase64URL(pub.Bytes())})
		return b, true, err
	case *crypto.Keypair:
		b, err := json.Marshal(akpJWK{Kty: string(KeyTypeAKP), Kid: k.id, Alg: crypto.MLKEM768, Use: k.use, Pub: crypto.ToBase64URL(pub.PublicKey)})
		return b, true, err
	default:
		b, err := json.Marshal(jose.JSONWebKey{Key: pub, KeyID: k.id, Algorithm: k.alg, Use: k.use})
		return b, true, err
	}
}
