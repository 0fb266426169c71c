package crypto

import (
	"bytes"
	"crypto/rand"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// randReader is the random source used for key generation, IVs and
// encapsulation seeds. It defaults to nil (which uses crypto/rand) but can
// be overridden for testing.
var randReader io.Reader

func reader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// randomBytes returns n bytes from the package random source.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(reader(), b); err != nil {
		return nil, err
	}
	return b, nil
}

// Keypair represents an ML-KEM-768 keypair used as a JWE recipient key.
type Keypair struct {
	// PublicKey is the packed ML-KEM-768 encapsulation key.
	PublicKey []byte
	// SecretKey is the packed ML-KEM-768 decapsulation key. Nil for a
	// public-only recipient.
	SecretKey []byte
}

// GenerateKeypair creates a new ML-KEM-768 keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(reader())
	if err != nil {
		return nil, err
	}

	// MarshalBinary never fails for keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return &Keypair{PublicKey: pubBytes, SecretKey: privBytes}, nil
}

// KeypairFromSeed deterministically expands a 64-byte seed (d || z) into
// a keypair.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != MLKEMSeedSize {
		return nil, ErrInvalidSecretKeySize
	}
	pub, priv := mlkem768.NewKeyFromSeed(seed)
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()
	return &Keypair{PublicKey: pubBytes, SecretKey: privBytes}, nil
}

// KeypairFromSecretKey reconstructs a keypair from the packed secret key.
// The public key is embedded in the secret key at PublicKeyOffset.
func KeypairFromSecretKey(secretKey []byte) (*Keypair, error) {
	if len(secretKey) != MLKEMSecretKeySize {
		return nil, ErrInvalidSecretKeySize
	}
	var priv mlkem768.PrivateKey
	if err := priv.Unpack(secretKey); err != nil {
		return nil, err
	}

	publicKey := make([]byte, MLKEMPublicKeySize)
	copy(publicKey, secretKey[PublicKeyOffset:PublicKeyOffset+MLKEMPublicKeySize])

	return &Keypair{PublicKey: publicKey, SecretKey: secretKey}, nil
}

// NewKeypairFromBytes creates a keypair from raw bytes. privateKeyBytes may
// be nil for a public-only recipient; when both are present they must
// belong together.
func NewKeypairFromBytes(privateKeyBytes, publicKeyBytes []byte) (*Keypair, error) {
	if len(publicKeyBytes) != MLKEMPublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}
	var pub mlkem768.PublicKey
	if err := pub.Unpack(publicKeyBytes); err != nil {
		return nil, err
	}
	if privateKeyBytes == nil {
		return &Keypair{PublicKey: publicKeyBytes}, nil
	}

	kp, err := KeypairFromSecretKey(privateKeyBytes)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(kp.PublicKey, publicKeyBytes) {
		return nil, ErrKeyTypeMismatch
	}
	return kp, nil
}

// HasSecret reports whether the keypair can decapsulate.
func (k *Keypair) HasSecret() bool {
	return k != nil && len(k.SecretKey) == MLKEMSecretKeySize
}

// Encapsulate generates a fresh shared secret for the keypair's public key
// and returns it with the ciphertext that carries it.
func (k *Keypair) Encapsulate() (ciphertext, sharedSecret []byte, err error) {
	var pub mlkem768.PublicKey
	if err := pub.Unpack(k.PublicKey); err != nil {
		return nil, nil, err
	}

	seed, err := randomBytes(mlkem768.EncapsulationSeedSize)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = make([]byte, MLKEMCiphertextSize)
	sharedSecret = make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(ciphertext, sharedSecret, seed)
	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from the encapsulated key.
func (k *Keypair) Decapsulate(encapsulatedKey []byte) ([]byte, error) {
	if len(encapsulatedKey) != MLKEMCiphertextSize {
		return nil, ErrInvalidCiphertextSize
	}
	if !k.HasSecret() {
		return nil, ErrInvalidSecretKeySize
	}

	var privKey mlkem768.PrivateKey
	if err := privKey.Unpack(k.SecretKey); err != nil {
		return nil, err
	}

	sharedSecret := make([]byte, MLKEMSharedKeySize)
	privKey.DecapsulateTo(sharedSecret, encapsulatedKey)

	return sharedSecret, nil
}
