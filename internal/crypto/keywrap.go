package crypto

import (
	"crypto/aes"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RSA-OAEP is defined over SHA-1
	"crypto/sha256"
	"fmt"
	"hash"

	josecipher "github.com/go-jose/go-jose/v4/cipher"
)

// WrappedKey is the per-recipient result of key management: the encrypted
// CEK plus whatever the recipient needs to re-derive the KEK.
type WrappedKey struct {
	// EncryptedKey is the JWE "encrypted_key" member.
	EncryptedKey []byte
	// Ephemeral is the sender's ephemeral public key (ECDH-ES "epk").
	Ephemeral *ecdsa.PublicKey
	// PartyUInfo and PartyVInfo are the optional ECDH-ES "apu"/"apv" inputs.
	PartyUInfo []byte
	PartyVInfo []byte
	// Encapsulated is the ML-KEM ciphertext ("ek").
	Encapsulated []byte
}

// WrapKey encrypts cek to a recipient. recipient must be the public form of
// the key for asymmetric algorithms (*rsa.PublicKey, *ecdsa.PublicKey,
// *Keypair) and the shared secret ([]byte) for AES key wrap.
func WrapKey(alg string, recipient any, cek []byte) (*WrappedKey, error) {
	switch alg {
	case RSAOAEP, RSAOAEP256:
		pub, ok := recipient.(*rsa.PublicKey)
		if !ok {
			return nil, keyMismatch(alg, recipient)
		}
		ek, err := rsa.EncryptOAEP(oaepHash(alg), reader(), pub, cek, nil)
		if err != nil {
			return nil, err
		}
		return &WrappedKey{EncryptedKey: ek}, nil

	case ECDHESA128, ECDHESA192, ECDHESA256:
		pub, ok := recipient.(*ecdsa.PublicKey)
		if !ok {
			return nil, keyMismatch(alg, recipient)
		}
		if _, err := pub.ECDH(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyTypeMismatch, err)
		}
		ephemeral, err := ecdsa.GenerateKey(pub.Curve, reader())
		if err != nil {
			return nil, err
		}
		kek := josecipher.DeriveECDHES(alg, nil, nil, ephemeral, pub, kwKeySize(alg))
		ek, err := aesWrap(kek, cek)
		if err != nil {
			return nil, err
		}
		return &WrappedKey{EncryptedKey: ek, Ephemeral: &ephemeral.PublicKey}, nil

	case A128KW, A192KW, A256KW:
		secret, ok := recipient.([]byte)
		if !ok {
			return nil, keyMismatch(alg, recipient)
		}
		if len(secret) != kwKeySize(alg) {
			return nil, ErrInvalidKeySize
		}
		ek, err := aesWrap(secret, cek)
		if err != nil {
			return nil, err
		}
		return &WrappedKey{EncryptedKey: ek}, nil

	case MLKEM768KW:
		kp, ok := recipient.(*Keypair)
		if !ok {
			return nil, keyMismatch(alg, recipient)
		}
		ct, ss, err := kp.Encapsulate()
		if err != nil {
			return nil, err
		}
		kek, err := mlkemKEK(alg, ss, ct)
		if err != nil {
			return nil, err
		}
		ek, err := aesWrap(kek, cek)
		if err != nil {
			return nil, err
		}
		return &WrappedKey{EncryptedKey: ek, Encapsulated: ct}, nil

	default:
		return nil, fmt.Errorf("%w: alg %q", ErrInvalidAlgorithm, alg)
	}
}

// UnwrapKey recovers the CEK from w with the recipient's private key
// (*rsa.PrivateKey, *ecdsa.PrivateKey, *Keypair) or shared secret ([]byte).
func UnwrapKey(alg string, key any, w *WrappedKey) ([]byte, error) {
	if w == nil {
		return nil, ErrUnwrapFailed
	}

	switch alg {
	case RSAOAEP, RSAOAEP256:
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, keyMismatch(alg, key)
		}
		cek, err := rsa.DecryptOAEP(oaepHash(alg), nil, priv, w.EncryptedKey, nil)
		if err != nil {
			return nil, ErrUnwrapFailed
		}
		return cek, nil

	case ECDHESA128, ECDHESA192, ECDHESA256:
		priv, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, keyMismatch(alg, key)
		}
		epk := w.Ephemeral
		if epk == nil || epk.Curve == nil || epk.Curve.Params().Name != priv.Curve.Params().Name {
			return nil, ErrMissingEphemeralKey
		}
		// DeriveECDHES panics on points off the curve.
		if _, err := epk.ECDH(); err != nil {
			return nil, ErrMissingEphemeralKey
		}
		kek := josecipher.DeriveECDHES(alg, w.PartyUInfo, w.PartyVInfo, priv, epk, kwKeySize(alg))
		return aesUnwrap(kek, w.EncryptedKey)

	case A128KW, A192KW, A256KW:
		secret, ok := key.([]byte)
		if !ok {
			return nil, keyMismatch(alg, key)
		}
		if len(secret) != kwKeySize(alg) {
			return nil, ErrInvalidKeySize
		}
		return aesUnwrap(secret, w.EncryptedKey)

	case MLKEM768KW:
		kp, ok := key.(*Keypair)
		if !ok {
			return nil, keyMismatch(alg, key)
		}
		ss, err := kp.Decapsulate(w.Encapsulated)
		if err != nil {
			return nil, err
		}
		kek, err := mlkemKEK(alg, ss, w.Encapsulated)
		if err != nil {
			return nil, err
		}
		return aesUnwrap(kek, w.EncryptedKey)

	default:
		return nil, fmt.Errorf("%w: alg %q", ErrInvalidAlgorithm, alg)
	}
}

// mlkemKEK binds the KEK to the encapsulation ciphertext and the algorithm
// name.
func mlkemKEK(alg string, sharedSecret, ciphertext []byte) ([]byte, error) {
	salt := sha256.Sum256(ciphertext)
	return DeriveKey(sharedSecret, salt[:], []byte(KEKContext+":"+alg), 32)
}

func oaepHash(alg string) hash.Hash {
	if alg == RSAOAEP {
		return sha1.New()
	}
	return sha256.New()
}

func kwKeySize(alg string) int {
	switch alg {
	case A128KW, ECDHESA128:
		return 16
	case A192KW, ECDHESA192:
		return 24
	default:
		return 32
	}
}

func aesWrap(kek, cek []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}
	return josecipher.KeyWrap(block, cek)
}

func aesUnwrap(kek, wrapped []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}
	cek, err := josecipher.KeyUnwrap(block, wrapped)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	return cek, nil
}

func keyMismatch(alg string, key any) error {
	return fmt.Errorf("%w: %s cannot use %T", ErrKeyTypeMismatch, alg, key)
}
