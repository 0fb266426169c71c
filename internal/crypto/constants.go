package crypto

// Key management algorithms ("alg" header values) supported for wrapping
// the content-encryption key.
const (
	RSAOAEP    = "RSA-OAEP"
	RSAOAEP256 = "RSA-OAEP-256"
	ECDHESA128 = "ECDH-ES+A128KW"
	ECDHESA192 = "ECDH-ES+A192KW"
	ECDHESA256 = "ECDH-ES+A256KW"
	A128KW     = "A128KW"
	A192KW     = "A192KW"
	A256KW     = "A256KW"
	MLKEM768KW = "ML-KEM-768+A256KW"
)

// Post-quantum algorithm names as carried in the "alg" member of AKP keys.
const (
	MLDSA65  = "ML-DSA-65"
	MLKEM768 = "ML-KEM-768"
)

// Content encryption algorithms ("enc" header values).
const (
	A128GCM      = "A128GCM"
	A192GCM      = "A192GCM"
	A256GCM      = "A256GCM"
	A128CBCHS256 = "A128CBC-HS256"
	A192CBCHS384 = "A192CBC-HS384"
	A256CBCHS512 = "A256CBC-HS512"
)

const (
	// KEKContext is the HKDF info prefix used when deriving a key-encryption
	// key from an ML-KEM shared secret.
	KEKContext = "docseal:jwe:kek:v1"

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMSeedSize is the size of an ML-KEM-768 key generation seed in bytes.
	MLKEMSeedSize = 64
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32

	// MLDSAPublicKeySize is the size of an ML-DSA-65 public key in bytes.
	MLDSAPublicKeySize = 1952
	// MLDSAPrivateKeySize is the size of an expanded ML-DSA-65 private key in bytes.
	MLDSAPrivateKeySize = 4032
	// MLDSASeedSize is the size of an ML-DSA-65 key generation seed in bytes.
	MLDSASeedSize = 32
	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes.
	MLDSASignatureSize = 3309

	// GCMNonceSize is the size of an AES-GCM initialization vector in bytes.
	GCMNonceSize = 12
	// GCMTagSize is the size of an AES-GCM authentication tag in bytes.
	GCMTagSize = 16
	// CBCNonceSize is the size of an AES-CBC initialization vector in bytes.
	CBCNonceSize = 16

	// PublicKeyOffset is the byte offset where the public key is embedded
	// within an ML-KEM-768 secret key.
	PublicKeyOffset = 1152
)

// KeyAlgorithms lists every supported key management algorithm.
var KeyAlgorithms = []string{
	RSAOAEP, RSAOAEP256,
	ECDHESA128, ECDHESA192, ECDHESA256,
	A128KW, A192KW, A256KW,
	MLKEM768KW,
}

// ContentAlgorithms lists every supported content encryption algorithm.
var ContentAlgorithms = []string{
	A128GCM, A192GCM, A256GCM,
	A128CBCHS256, A192CBCHS384, A256CBCHS512,
}
