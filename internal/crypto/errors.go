package crypto

import "errors"

var (
	// ErrInvalidSecretKeySize is returned when the secret key size is invalid.
	ErrInvalidSecretKeySize = errors.New("invalid secret key size")

	// ErrInvalidPublicKeySize is returned when the public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidCiphertextSize is returned when the ciphertext size is invalid.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrSignatureVerificationFailed is returned when signature verification fails.
	ErrSignatureVerificationFailed = errors.New("signature verification failed")

	// ErrDecryptionFailed is returned when authenticated decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrUnwrapFailed is returned when a wrapped content-encryption key
	// cannot be recovered with the supplied key.
	ErrUnwrapFailed = errors.New("key unwrap failed")

	// ErrInvalidKeySize is returned when a symmetric key has the wrong size
	// for the selected algorithm.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidAlgorithm is returned when an unrecognized or unsupported
	// algorithm is requested.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")

	// ErrKeyTypeMismatch is returned when the key material cannot be used
	// with the requested algorithm.
	ErrKeyTypeMismatch = errors.New("key type does not match algorithm")

	// ErrMissingEphemeralKey is returned when an ECDH-ES recipient carries
	// no usable ephemeral public key.
	ErrMissingEphemeralKey = errors.New("missing or invalid ephemeral key")
)
