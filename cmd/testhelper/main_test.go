package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	jose "github.com/go-jose/go-jose/v4"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

// keySet returns a JWKS holding the private test key under "h".
func keySet(t *testing.T) map[string]any {
	t.Helper()
	data, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{Key: rsaKey(t), KeyID: "h"}}})
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	var set map[string]any
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("unmarshal jwks: %v", err)
	}
	return set
}

func request(t *testing.T, req map[string]any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(data)
}

func runCommand(t *testing.T, cmd string, req map[string]any) (map[string]any, error) {
	t.Helper()
	var stdout bytes.Buffer
	cfg := &Config{Stdin: request(t, req), Stdout: &stdout}

	err := run([]string{"testhelper", cmd}, cfg)

	var out map[string]any
	if stdout.Len() > 0 {
		if jerr := json.Unmarshal(stdout.Bytes(), &out); jerr != nil {
			t.Fatalf("stdout is not JSON: %q", stdout.String())
		}
	}
	return out, err
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stdin != os.Stdin {
		t.Error("DefaultConfig().Stdin should be os.Stdin")
	}
	if cfg.Stdout != os.Stdout {
		t.Error("DefaultConfig().Stdout should be os.Stdout")
	}
}

func TestRun_SignVerify(t *testing.T) {
	config := map[string]any{"jwks": keySet(t)}

	signed, err := runCommand(t, "sign", map[string]any{
		"config":   config,
		"document": map[string]any{"value": "x", "_metadata": map[string]any{}},
	})
	if err != nil {
		t.Fatalf("sign error = %v", err)
	}
	token, _ := signed["token"].(string)
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token = %q, want compact JWS", token)
	}

	verified, err := runCommand(t, "verify", map[string]any{"config": config, "token": token})
	if err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if verified["status"] != "verified" {
		t.Errorf("status = %v, want verified", verified["status"])
	}
	doc := verified["document"].(map[string]any)
	if doc["_metadata"].(map[string]any)["verified"] != true {
		t.Errorf("document = %v, want _metadata.verified = true", doc)
	}
}

func TestRun_EncryptDecrypt(t *testing.T) {
	config := map[string]any{"jwks": keySet(t), "enc": "A128CBC-HS256"}

	env, err := runCommand(t, "encrypt", map[string]any{
		"config":   config,
		"document": map[string]any{"value": "x"},
	})
	if err != nil {
		t.Fatalf("encrypt error = %v", err)
	}
	if _, ok := env["recipients"]; !ok {
		t.Fatalf("envelope = %v, want recipients", env)
	}

	doc, err := runCommand(t, "decrypt", map[string]any{"config": config, "envelope": env})
	if err != nil {
		t.Fatalf("decrypt error = %v", err)
	}
	if doc["value"] != "x" {
		t.Errorf("document = %v, want value x", doc)
	}
}

func TestRun_EncryptNoRecipients(t *testing.T) {
	out, err := runCommand(t, "encrypt", map[string]any{"document": map[string]any{"value": "x"}})
	if err == nil {
		t.Fatal("encrypt without keys should fail")
	}
	if !strings.Contains(out["error"].(string), "no key") {
		t.Errorf("error output = %v", out)
	}
}

func TestRun_DecryptWithoutEnvelope(t *testing.T) {
	_, err := runCommand(t, "decrypt", map[string]any{"config": map[string]any{"jwks": keySet(t)}})
	if err == nil || !strings.Contains(err.Error(), "no envelope") {
		t.Errorf("err = %v, want missing envelope error", err)
	}
}

func TestRun_PublicKeys(t *testing.T) {
	out, err := runCommand(t, "public-keys", map[string]any{"config": map[string]any{"jwks": keySet(t)}})
	if err != nil {
		t.Fatalf("public-keys error = %v", err)
	}

	keys := out["keys"].([]any)
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want one key", keys)
	}
	key := keys[0].(map[string]any)
	if key["kid"] != "h" {
		t.Errorf("kid = %v, want h", key["kid"])
	}
	if _, ok := key["d"]; ok {
		t.Error("published key contains the private exponent")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := runCommand(t, "sign", map[string]any{"config": map[string]any{"sig": "none"}})
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("err = %v, want parse config error", err)
	}

	_, err = runCommand(t, "sign", map[string]any{"config": map[string]any{"jwks": map[string]any{"keys": []any{map[string]any{"kty": "RSA"}}}}})
	if err == nil || !strings.Contains(err.Error(), "load keys") {
		t.Errorf("err = %v, want load keys error", err)
	}
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read error")
}

type errorWriter struct{}

func (e *errorWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write error")
}

func TestRun_ReadError(t *testing.T) {
	cfg := &Config{Stdin: &errorReader{}, Stdout: &bytes.Buffer{}}
	err := run([]string{"testhelper", "sign"}, cfg)
	if err == nil || !strings.Contains(err.Error(), "read stdin") {
		t.Errorf("err = %v, want read stdin error", err)
	}
}

func TestRun_InvalidJSON(t *testing.T) {
	cfg := &Config{Stdin: strings.NewReader("{"), Stdout: &bytes.Buffer{}}
	err := run([]string{"testhelper", "sign"}, cfg)
	if err == nil || !strings.Contains(err.Error(), "parse request") {
		t.Errorf("err = %v, want parse request error", err)
	}
}

func TestRun_EncodeError(t *testing.T) {
	cfg := &Config{Stdin: strings.NewReader(`{"document":{}}`), Stdout: &errorWriter{}}
	err := run([]string{"testhelper", "sign"}, cfg)
	if err == nil || !strings.Contains(err.Error(), "encode output") {
		t.Errorf("err = %v, want encode output error", err)
	}
}

func TestRun_NoArgs(t *testing.T) {
	cfg := &Config{Stdout: &bytes.Buffer{}}
	err := run([]string{"testhelper"}, cfg)
	if err == nil {
		t.Error("run() should return error with no args")
	}
	if !strings.Contains(err.Error(), "usage") {
		t.Errorf("error should contain usage, got %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	cfg := &Config{Stdout: &bytes.Buffer{}}
	err := run([]string{"testhelper", "unknown-command"}, cfg)
	if err == nil {
		t.Error("run() should return error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error should contain 'unknown command', got %v", err)
	}
}

func TestFatal(t *testing.T) {
	originalExitFunc := exitFunc
	defer func() { exitFunc = originalExitFunc }()

	var exitCode int
	exitFunc = func(code int) {
		exitCode = code
	}

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fatal("error %d: %s", 42, "something went wrong")

	w.Close()
	os.Stderr = oldStderr
	var buf bytes.Buffer
	buf.ReadFrom(r)

	if exitCode != 1 {
		t.Errorf("exitCode = %d, want 1", exitCode)
	}
	if got, want := buf.String(), "error 42: something went wrong\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
