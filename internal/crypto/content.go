package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	josecipher "github.com/go-jose/go-jose/v4/cipher"
)

// ContentKeySize returns the content-encryption key size in bytes for enc.
func ContentKeySize(enc string) (int, error) {
	switch enc {
	case A128GCM:
		return 16, nil
	case A192GCM:
		return 24, nil
	case A256GCM, A128CBCHS256:
		return 32, nil
	case A192CBCHS384:
		return 48, nil
	case A256CBCHS512:
		return 64, nil
	default:
		return 0, fmt.Errorf("%w: enc %q", ErrInvalidAlgorithm, enc)
	}
}

// GenerateContentKey returns a fresh random content-encryption key for enc.
func GenerateContentKey(enc string) ([]byte, error) {
	size, err := ContentKeySize(enc)
	if err != nil {
		return nil, err
	}
	return randomBytes(size)
}

// SealContent encrypts plaintext under cek with a fresh IV and returns the
// IV, ciphertext and authentication tag as separate JWE members.
func SealContent(enc string, cek, aad, plaintext []byte) (iv, ciphertext, tag []byte, err error) {
	aead, tagSize, err := newContentAEAD(enc, cek)
	if err != nil {
		return nil, nil, nil, err
	}

	iv, err = randomBytes(aead.NonceSize())
	if err != nil {
		return nil, nil, nil, err
	}

	sealed := aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - tagSize
	return iv, sealed[:split], sealed[split:], nil
}

// OpenContent authenticates and decrypts a JWE payload.
func OpenContent(enc string, cek, aad, iv, ciphertext, tag []byte) ([]byte, error) {
	aead, tagSize, err := newContentAEAD(enc, cek)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, ErrInvalidNonceSize
	}
	if len(tag) != tagSize {
		return nil, ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// newContentAEAD returns the AEAD for enc and the size of its tag. For the
// CBC-HMAC family the tag is half the composite key length.
func newContentAEAD(enc string, cek []byte) (cipher.AEAD, int, error) {
	size, err := ContentKeySize(enc)
	if err != nil {
		return nil, 0, err
	}
	if len(cek) != size {
		return nil, 0, ErrInvalidKeySize
	}

	switch enc {
	case A128GCM, A192GCM, A256GCM:
		block, err := aes.NewCipher(cek)
		if err != nil {
			return nil, 0, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, 0, err
		}
		return aead, GCMTagSize, nil
	default:
		aead, err := josecipher.NewCBCHMAC(cek, aes.NewCipher)
		if err != nil {
			return nil, 0, err
		}
		return aead, size / 2, nil
	}
}
