package crypto

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// GenerateSigningKey creates a new ML-DSA-65 key pair.
func GenerateSigningKey() (*mldsa65.PublicKey, *mldsa65.PrivateKey, error) {
	return mldsa65.GenerateKey(reader())
}

// ParseSigningPublicKey unpacks an ML-DSA-65 public key.
func ParseSigningPublicKey(b []byte) (*mldsa65.PublicKey, error) {
	if len(b) != MLDSAPublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}
	var pub mldsa65.PublicKey
	if err := pub.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &pub, nil
}

// ParseSigningPrivateKey accepts either a 32-byte seed or a packed
// ML-DSA-65 private key.
func ParseSigningPrivateKey(b []byte) (*mldsa65.PrivateKey, error) {
	switch len(b) {
	case MLDSASeedSize:
		var seed [mldsa65.SeedSize]byte
		copy(seed[:], b)
		_, priv := mldsa65.NewKeyFromSeed(&seed)
		return priv, nil
	case MLDSAPrivateKeySize:
		var priv mldsa65.PrivateKey
		if err := priv.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		return &priv, nil
	default:
		return nil, ErrInvalidSecretKeySize
	}
}

// Sign produces a randomized ML-DSA-65 signature over message with an empty
// context string.
func Sign(priv *mldsa65.PrivateKey, message []byte) ([]byte, error) {
	sig := make([]byte, MLDSASignatureSize)
	if err := mldsa65.SignTo(priv, message, nil, true, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// Verify checks an ML-DSA-65 signature over message.
func Verify(pub *mldsa65.PublicKey, message, signature []byte) error {
	if len(signature) != MLDSASignatureSize {
		return ErrSignatureVerificationFailed
	}
	if !mldsa65.Verify(pub, message, nil, signature) {
		return ErrSignatureVerificationFailed
	}
	return nil
}
