package docseal

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyNotFound is returned when a key id is not present in the registry.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoHolderKey is returned when an operation needs the local holder
	// key and none is configured or it lacks the required capability.
	ErrNoHolderKey = errors.New("no holder key configured")

	// ErrNoRecipients is returned when the recipient set derived from a
	// document is empty. The document is left untouched.
	ErrNoRecipients = errors.New("no recipients for envelope")

	// ErrMalformedToken is returned when a compact signature, an envelope or
	// a decrypted payload cannot be parsed.
	ErrMalformedToken = errors.New("malformed token")

	// ErrNoMatchingRecipient is returned when an envelope has no recipient
	// entry for the holder key.
	ErrNoMatchingRecipient = errors.New("no recipient matches holder key")

	// ErrCryptoFailure is returned when an underlying primitive rejects its
	// input: bad tag, wrong key, bad padding.
	ErrCryptoFailure = errors.New("cryptographic operation failed")

	// ErrInvalidConfig is returned when the registry configuration is
	// rejected at construction.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DocSealError is implemented by all typed errors of this package.
type DocSealError interface {
	error
	DocSealError() // marker method
}

// ConfigError reports a configuration problem found while building a
// KeyRegistry.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid config %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// DocSealError implements the DocSealError interface.
func (e *ConfigError) DocSealError() {}

// Encryption stages.
const (
	StageRecipients = "recipients"
	StageSerialize  = "serialize"
	StageWrap       = "wrap"
	StageContent    = "content"
)

// Decryption stages. StageContent is shared with encryption.
const (
	StageHolder    = "holder"
	StageParse     = "parse"
	StageRecipient = "recipient"
	StageUnwrap    = "unwrap"
	StagePayload   = "payload"
)

// EncryptionError represents a failure to build an envelope.
type EncryptionError struct {
	Stage   string // "recipients", "serialize", "wrap", "content"
	KeyID   string
	Message string
	Err     error
}

func (e *EncryptionError) Error() string {
	where := e.Stage
	if e.KeyID != "" {
		where = fmt.Sprintf("%s (kid %s)", e.Stage, e.KeyID)
	}
	if e.Err != nil {
		return fmt.Sprintf("encryption failed at %s: %v", where, e.Err)
	}
	return fmt.Sprintf("encryption failed at %s: %s", where, e.Message)
}

// Unwrap returns the underlying error.
func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *EncryptionError) Is(target error) bool {
	switch e.Stage {
	case StageRecipients:
		return target == ErrNoRecipients
	case StageSerialize:
		return target == ErrMalformedToken
	case StageWrap, StageContent:
		return target == ErrCryptoFailure
	}
	return false
}

// DocSealError implements the DocSealError interface.
func (e *EncryptionError) DocSealError() {}

// DecryptionError represents a failure to open an envelope.
type DecryptionError struct {
	Stage   string // "holder", "parse", "recipient", "unwrap", "content", "payload"
	Message string
	Err     error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("decryption failed at %s: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	switch e.Stage {
	case StageHolder:
		return target == ErrNoHolderKey
	case StageParse, StagePayload:
		return target == ErrMalformedToken
	case StageRecipient:
		return target == ErrNoMatchingRecipient
	case StageUnwrap, StageContent:
		return target == ErrCryptoFailure
	}
	return false
}

// DocSealError implements the DocSealError interface.
func (e *DecryptionError) DocSealError() {}
