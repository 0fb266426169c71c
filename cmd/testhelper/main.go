package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	docseal "github.com/docseal/client-go"
)

// Config holds the process streams; tests replace them.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// Request is read from stdin. Config is decoded with docseal.ParseConfig.
type Request struct {
	Config   map[string]any   `json:"config"`
	Document docseal.Document `json:"document,omitempty"`
	Token    string           `json:"token,omitempty"`
	Envelope json.RawMessage  `json:"envelope,omitempty"`
}

// VerifyOutput is written by the verify command.
type VerifyOutput struct {
	Status   string           `json:"status"`
	Document docseal.Document `json:"document"`
}

// ErrorOutput is written instead of a result when an operation fails.
type ErrorOutput struct {
	Error string `json:"error"`
}

var exitFunc = os.Exit

const usage = "usage: testhelper <sign|verify|encrypt|decrypt|public-keys>"

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New(usage)
	}

	var cmd func(*docseal.Service, *Request, *Config) error
	switch args[1] {
	case "sign":
		cmd = runSign
	case "verify":
		cmd = runVerify
	case "encrypt":
		cmd = runEncrypt
	case "decrypt":
		cmd = runDecrypt
	case "public-keys":
		cmd = runPublicKeys
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}

	req, err := readRequest(cfg)
	if err != nil {
		return err
	}
	svc, err := newService(req)
	if err != nil {
		return err
	}
	return cmd(svc, req, cfg)
}

func readRequest(cfg *Config) (*Request, error) {
	data, err := io.ReadAll(cfg.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

func newService(req *Request) (*docseal.Service, error) {
	if req.Config == nil {
		req.Config = map[string]any{}
	}
	if _, ok := req.Config["log_level"]; !ok {
		req.Config["log_level"] = string(docseal.LogNone)
	}

	cfg, err := docseal.ParseConfig(req.Config)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	registry, err := docseal.NewKeyRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	return docseal.New(registry), nil
}

func runSign(svc *docseal.Service, req *Request, cfg *Config) error {
	return encode(cfg, map[string]string{"token": svc.Sign(req.Document)})
}

func runVerify(svc *docseal.Service, req *Request, cfg *Config) error {
	doc, status := svc.Verify(req.Token)
	return encode(cfg, VerifyOutput{Status: status.String(), Document: doc})
}

func runEncrypt(svc *docseal.Service, req *Request, cfg *Config) error {
	env, err := svc.Encrypt(req.Document)
	if err != nil {
		return reportError(cfg, "encrypt", err)
	}
	return encode(cfg, env)
}

func runDecrypt(svc *docseal.Service, req *Request, cfg *Config) error {
	if len(req.Envelope) == 0 {
		return errors.New("decrypt: request has no envelope")
	}
	env, err := docseal.ParseEnvelope(req.Envelope)
	if err != nil {
		return reportError(cfg, "decrypt", err)
	}
	doc, err := svc.Decrypt(env)
	if err != nil {
		return reportError(cfg, "decrypt", err)
	}
	return encode(cfg, doc)
}

func runPublicKeys(svc *docseal.Service, _ *Request, cfg *Config) error {
	jwks, err := svc.Registry().PublicKeySet()
	if err != nil {
		return fmt.Errorf("public keys: %w", err)
	}
	return encode(cfg, json.RawMessage(jwks))
}

// reportError writes the failure as JSON so callers can assert on it, then
// returns it for the exit status.
func reportError(cfg *Config, op string, err error) error {
	if encErr := encode(cfg, ErrorOutput{Error: err.Error()}); encErr != nil {
		return encErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

func encode(cfg *Config, v any) error {
	if err := json.NewEncoder(cfg.Stdout).Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
