// Package crypto provides the cryptographic building blocks used by the
// docseal envelope layer. It owns no protocol state: callers decide which
// algorithm to use and how the results are framed in JOSE structures.
//
// # Algorithm Suite
//
// Content encryption (JWE "enc"):
//
//   - A128GCM, A192GCM, A256GCM: AES-GCM with a 96-bit IV and 128-bit tag.
//
//   - A128CBC-HS256, A192CBC-HS384, A256CBC-HS512: AES-CBC with HMAC-SHA2
//     as specified in RFC 7518 §5.2.
//
// Key management (JWE "alg"):
//
//   - RSA-OAEP, RSA-OAEP-256: the CEK is encrypted to the recipient's RSA key.
//
//   - ECDH-ES+A128KW, ECDH-ES+A192KW, ECDH-ES+A256KW: an ephemeral EC key
//     agrees a KEK with the recipient (Concat KDF), which wraps the CEK
//     with AES Key Wrap (RFC 3394).
//
//   - A128KW, A192KW, A256KW: the CEK is wrapped directly with a shared
//     symmetric key.
//
//   - ML-KEM-768+A256KW: ML-KEM-768 (NIST FIPS 203) encapsulation to the
//     recipient, HKDF-SHA-512 over the shared secret yields a 256-bit KEK
//     which wraps the CEK with AES Key Wrap.
//
// Signatures outside the go-jose algorithm set:
//
//   - ML-DSA-65 (NIST FIPS 204) over the JWS signing input.
//
// # Randomness
//
// All keys, IVs and ephemeral material come from crypto/rand unless a test
// overrides the reader with [SetRandReaderForTesting]. No two encryptions
// share an IV/key pair because every envelope uses a fresh CEK.
//
// # Base64 Encoding
//
// [ToBase64URL]/[FromBase64URL] implement URL-safe base64 without padding
// (RFC 4648 §5), the encoding used for every JOSE member.
package crypto
