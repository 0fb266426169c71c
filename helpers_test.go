package docseal

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"sync"
	"testing"

	"github.com/docseal/client-go/internal/crypto"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"
)

var (
	rsaKeysOnce sync.Once
	rsaKeys     [2]*rsa.PrivateKey
)

// testRSAKeys returns two RSA keys shared by all tests; generation is slow.
func testRSAKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	rsaKeysOnce.Do(func() {
		for i := range rsaKeys {
			key, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				panic(err)
			}
			rsaKeys[i] = key
		}
	})
	return rsaKeys[0], rsaKeys[1]
}

func testECKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return key
}

func testSecret(t *testing.T, size int) []byte {
	t.Helper()
	secret := make([]byte, size)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	return secret
}

// testJWK marshals key as a JWK with kid and any extra members.
func testJWK(t *testing.T, kid string, key any, extra map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(jose.JSONWebKey{Key: key, KeyID: kid})
	require.NoError(t, err)
	if len(extra) == 0 {
		return data
	}

	var members map[string]any
	require.NoError(t, json.Unmarshal(data, &members))
	for k, v := range extra {
		members[k] = v
	}
	data, err = json.Marshal(members)
	require.NoError(t, err)
	return data
}

// testMLDSAJWK returns an AKP ML-DSA-65 JWK. A nil priv omits the private
// member.
func testMLDSAJWK(t *testing.T, kid string, pub, priv []byte) json.RawMessage {
	t.Helper()
	return testAKPJWK(t, kid, crypto.MLDSA65, pub, priv)
}

// testMLKEMJWK returns an AKP ML-KEM-768 JWK.
func testMLKEMJWK(t *testing.T, kid string, kp *crypto.Keypair, withPrivate bool) json.RawMessage {
	t.Helper()
	var priv []byte
	if withPrivate {
		priv = kp.SecretKey
	}
	return testAKPJWK(t, kid, crypto.MLKEM768, kp.PublicKey, priv)
}

func testAKPJWK(t *testing.T, kid, alg string, pub, priv []byte) json.RawMessage {
	t.Helper()
	j := akpJWK{Kty: string(KeyTypeAKP), Kid: kid, Alg: alg, Pub: crypto.ToBase64URL(pub)}
	if priv != nil {
		j.Priv = crypto.ToBase64URL(priv)
	}
	data, err := json.Marshal(j)
	require.NoError(t, err)
	return data
}

func testKeySet(t *testing.T, keys ...json.RawMessage) json.RawMessage {
	t.Helper()
	if keys == nil {
		keys = []json.RawMessage{}
	}
	data, err := json.Marshal(jwkSet{Keys: keys})
	require.NoError(t, err)
	return data
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	registry, err := NewKeyRegistry(cfg)
	require.NoError(t, err)
	return New(registry, WithLogger(SetupLogger(LogNone, "test")))
}

// peerServices returns the services of two parties that know each other:
// "k1" holds the first RSA key and "k2" the second. Each registry has the
// other party's public key only.
func peerServices(t *testing.T) (k1 *Service, k2 *Service) {
	t.Helper()
	key1, key2 := testRSAKeys(t)

	k1 = newTestService(t, Config{JWKS: testKeySet(t,
		testJWK(t, "k1", key1, nil),
		testJWK(t, "k2", &key2.PublicKey, nil),
	)})
	k2 = newTestService(t, Config{JWKS: testKeySet(t,
		testJWK(t, "k2", key2, nil),
		testJWK(t, "k1", &key1.PublicKey, nil),
	)})
	return k1, k2
}
