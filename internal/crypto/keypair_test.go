package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	if len(kp.PublicKey) != MLKEMPublicKeySize {
		t.Errorf("PublicKey size = %d, want %d", len(kp.PublicKey), MLKEMPublicKeySize)
	}
	if len(kp.SecretKey) != MLKEMSecretKeySize {
		t.Errorf("SecretKey size = %d, want %d", len(kp.SecretKey), MLKEMSecretKeySize)
	}
	if !kp.HasSecret() {
		t.Error("HasSecret() = false for generated keypair")
	}

	// Public key is embedded in the packed secret key.
	embedded := kp.SecretKey[PublicKeyOffset : PublicKeyOffset+MLKEMPublicKeySize]
	if !bytes.Equal(embedded, kp.PublicKey) {
		t.Error("Public key is not embedded at expected offset in secret key")
	}
}

func TestKeypairFromSeed_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x5a}, MLKEMSeedSize)

	kp1, err := KeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("KeypairFromSeed() error = %v", err)
	}
	kp2, err := KeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("KeypairFromSeed() error = %v", err)
	}

	if !bytes.Equal(kp1.SecretKey, kp2.SecretKey) {
		t.Error("same seed produced different secret keys")
	}

	if _, err := KeypairFromSeed(seed[:32]); !errors.Is(err, ErrInvalidSecretKeySize) {
		t.Errorf("KeypairFromSeed(short) error = %v, want ErrInvalidSecretKeySize", err)
	}
}

func TestKeypairFromSecretKey(t *testing.T) {
	original, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	reconstructed, err := KeypairFromSecretKey(original.SecretKey)
	if err != nil {
		t.Fatalf("KeypairFromSecretKey() error = %v", err)
	}
	if !bytes.Equal(original.PublicKey, reconstructed.PublicKey) {
		t.Error("Reconstructed public key does not match original")
	}
}

func TestKeypairFromSecretKey_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", []byte{}},
		{"one byte short", make([]byte, MLKEMSecretKeySize-1)},
		{"one byte long", make([]byte, MLKEMSecretKeySize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeypairFromSecretKey(tt.key)
			if !errors.Is(err, ErrInvalidSecretKeySize) {
				t.Errorf("expected ErrInvalidSecretKeySize, got %v", err)
			}
		})
	}
}

func TestNewKeypairFromBytes(t *testing.T) {
	original, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	other, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	t.Run("matching pair", func(t *testing.T) {
		kp, err := NewKeypairFromBytes(original.SecretKey, original.PublicKey)
		if err != nil {
			t.Fatalf("NewKeypairFromBytes() error = %v", err)
		}
		if !bytes.Equal(kp.SecretKey, original.SecretKey) {
			t.Error("SecretKey mismatch")
		}
	})

	t.Run("public only", func(t *testing.T) {
		kp, err := NewKeypairFromBytes(nil, original.PublicKey)
		if err != nil {
			t.Fatalf("NewKeypairFromBytes() error = %v", err)
		}
		if kp.HasSecret() {
			t.Error("HasSecret() = true for public-only keypair")
		}
	})

	t.Run("mismatched pair", func(t *testing.T) {
		_, err := NewKeypairFromBytes(original.SecretKey, other.PublicKey)
		if !errors.Is(err, ErrKeyTypeMismatch) {
			t.Errorf("expected ErrKeyTypeMismatch, got %v", err)
		}
	})

	t.Run("invalid public key size", func(t *testing.T) {
		_, err := NewKeypairFromBytes(original.SecretKey, []byte("short"))
		if !errors.Is(err, ErrInvalidPublicKeySize) {
			t.Errorf("expected ErrInvalidPublicKeySize, got %v", err)
		}
	})
}

func TestKeypair_EncapsulateDecapsulate(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	ct, ss, err := kp.Encapsulate()
	if err != nil {
		t.Fatalf("Encapsulate() error = %v", err)
	}
	if len(ct) != MLKEMCiphertextSize {
		t.Errorf("ciphertext size = %d, want %d", len(ct), MLKEMCiphertextSize)
	}

	got, err := kp.Decapsulate(ct)
	if err != nil {
		t.Fatalf("Decapsulate() error = %v", err)
	}
	if !bytes.Equal(got, ss) {
		t.Error("decapsulated secret does not match encapsulated secret")
	}

	t.Run("invalid ciphertext size", func(t *testing.T) {
		_, err := kp.Decapsulate(make([]byte, MLKEMCiphertextSize-1))
		if !errors.Is(err, ErrInvalidCiphertextSize) {
			t.Errorf("expected ErrInvalidCiphertextSize, got %v", err)
		}
	})

	t.Run("public only", func(t *testing.T) {
		pub := &Keypair{PublicKey: kp.PublicKey}
		_, err := pub.Decapsulate(ct)
		if !errors.Is(err, ErrInvalidSecretKeySize) {
			t.Errorf("expected ErrInvalidSecretKeySize, got %v", err)
		}
	})
}

func BenchmarkGenerateKeypair(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateKeypair(); err != nil {
			b.Fatal(err)
		}
	}
}
