package docseal

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"strings"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/docseal/client-go/internal/crypto"
)

// KeyType is the JWK "kty" of a key.
type KeyType string

const (
	KeyTypeRSA KeyType = "RSA"
	KeyTypeEC  KeyType = "EC"
	KeyTypeOct KeyType = "oct"
	KeyTypeOKP KeyType = "OKP"
	KeyTypeAKP KeyType = "AKP"
)

// Capability is a bit set of operations a key may take part in.
type Capability uint8

const (
	CapSign Capability = 1 << iota
	CapVerify
	CapWrapKey
	CapUnwrapKey
)

const capAll = CapSign | CapVerify | CapWrapKey | CapUnwrapKey

func (c Capability) String() string {
	var parts []string
	for _, n := range []struct {
		c    Capability
		name string
	}{
		{CapSign, "sign"},
		{CapVerify, "verify"},
		{CapWrapKey, "wrapKey"},
		{CapUnwrapKey, "unwrapKey"},
	} {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Key is an immutable named key loaded from a JWKS.
type Key struct {
	id   string
	kty  KeyType
	alg  string
	use  string
	caps Capability

	// public is the verification / wrapping form: *rsa.PublicKey,
	// *ecdsa.PublicKey, ed25519.PublicKey, []byte, *mldsa65.PublicKey or a
	// public-only *crypto.Keypair.
	public any
	// private is nil for public-only keys.
	private any
}

// ID returns the key identifier ("kid").
func (k *Key) ID() string { return k.id }

// Type returns the JWK key type.
func (k *Key) Type() KeyType { return k.kty }

// Algorithm returns the JWK "alg" the key was declared with, if any.
func (k *Key) Algorithm() string { return k.alg }

// Capabilities returns the operations the key may take part in.
func (k *Key) Capabilities() Capability { return k.caps }

// Can reports whether the key has every capability in c.
func (k *Key) Can(c Capability) bool { return k.caps&c == c }

// HasPrivate reports whether the key carries private or secret material.
func (k *Key) HasPrivate() bool { return k.private != nil }

// Public returns the public half of the key. For symmetric keys it is the
// secret itself.
func (k *Key) Public() any { return k.public }

// SupportsSignatureAlgorithm reports whether the key material can be used
// with the JWS algorithm alg.
func (k *Key) SupportsSignatureAlgorithm(alg string) bool {
	switch alg {
	case "RS256", "RS384", "RS512", "PS256", "PS384", "PS512":
		return k.kty == KeyTypeRSA
	case "ES256":
		return k.ecCurve() == "P-256"
	case "ES384":
		return k.ecCurve() == "P-384"
	case "ES512":
		return k.ecCurve() == "P-521"
	case "EdDSA":
		return k.kty == KeyTypeOKP
	case "HS256", "HS384", "HS512":
		return k.kty == KeyTypeOct
	case crypto.MLDSA65:
		_, ok := k.public.(*mldsa65.PublicKey)
		return ok
	}
	return false
}

// SupportsKeyAlgorithm reports whether the key material can be used with
// the JWE key management algorithm alg.
func (k *Key) SupportsKeyAlgorithm(alg string) bool {
	switch alg {
	case crypto.RSAOAEP, crypto.RSAOAEP256:
		return k.kty == KeyTypeRSA
	case crypto.ECDHESA128, crypto.ECDHESA192, crypto.ECDHESA256:
		return k.kty == KeyTypeEC
	case crypto.A128KW:
		return k.octSize() == 16
	case crypto.A192KW:
		return k.octSize() == 24
	case crypto.A256KW:
		return k.octSize() == 32
	case crypto.MLKEM768KW:
		_, ok := k.public.(*crypto.Keypair)
		return ok
	}
	return false
}

func (k *Key) ecCurve() string {
	if pub, ok := k.public.(*ecdsa.PublicKey); ok {
		return pub.Curve.Params().Name
	}
	return ""
}

func (k *Key) octSize() int {
	if secret, ok := k.public.([]byte); ok && k.kty == KeyTypeOct {
		return len(secret)
	}
	return 0
}

// defaultSignatureAlgorithm derives a JWS algorithm from the key material.
func (k *Key) defaultSignatureAlgorithm() string {
	if k.alg != "" && k.SupportsSignatureAlgorithm(k.alg) {
		return k.alg
	}
	switch pub := k.public.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		switch pub.Curve.Params().Name {
		case "P-384":
			return "ES384"
		case "P-521":
			return "ES512"
		}
		return "ES256"
	case ed25519.PublicKey:
		return "EdDSA"
	case []byte:
		return "HS256"
	case *mldsa65.PublicKey:
		return crypto.MLDSA65
	}
	return ""
}

// defaultKeyAlgorithm derives a JWE key management algorithm from the key
// material.
func (k *Key) defaultKeyAlgorithm() string {
	if k.alg != "" && k.SupportsKeyAlgorithm(k.alg) {
		return k.alg
	}
	switch k.kty {
	case KeyTypeRSA:
		return crypto.RSAOAEP256
	case KeyTypeEC:
		return crypto.ECDHESA256
	case KeyTypeOct:
		switch k.octSize() {
		case 16:
			return crypto.A128KW
		case 24:
			return crypto.A192KW
		case 32:
			return crypto.A256KW
		}
	case KeyTypeAKP:
		if k.SupportsKeyAlgorithm(crypto.MLKEM768KW) {
			return crypto.MLKEM768KW
		}
	}
	return ""
}
