package docseal

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// LogLevel is a logrus level name, or "none" to discard output.
type LogLevel string

const (
	LogError LogLevel = "error"
	LogWarn  LogLevel = "warn"
	LogInfo  LogLevel = "info"
	LogDebug LogLevel = "debug"
	LogTrace LogLevel = "trace"
	LogNone  LogLevel = "none"
)

// Config describes the key set and algorithm choices a KeyRegistry is
// built from. Empty algorithm fields are derived from the holder key.
type Config struct {
	// JWKS is a JSON Web Key Set ({"keys":[...]}). Empty means no keys.
	JWKS json.RawMessage `mapstructure:"jwks"`

	// HolderKeyID names the local key explicitly. When empty the first key
	// with private or secret material is the holder.
	HolderKeyID string `mapstructure:"holder_key_id"`

	SignatureAlgorithm string `mapstructure:"sig" validate:"omitempty,oneof=RS256 RS384 RS512 PS256 PS384 PS512 ES256 ES384 ES512 EdDSA HS256 HS384 HS512 ML-DSA-65"`
	KeyAlgorithm       string `mapstructure:"alg" validate:"omitempty,oneof=RSA-OAEP RSA-OAEP-256 ECDH-ES+A128KW ECDH-ES+A192KW ECDH-ES+A256KW A128KW A192KW A256KW ML-KEM-768+A256KW"`
	ContentAlgorithm   string `mapstructure:"enc" validate:"omitempty,oneof=A128GCM A192GCM A256GCM A128CBC-HS256 A192CBC-HS384 A256CBC-HS512"`

	LogLevel LogLevel `mapstructure:"log_level" validate:"omitempty,oneof=panic fatal error warn warning info debug trace none"`
}

var configValidate = validator.New()

// ParseConfig decodes a loosely-typed property map into a Config. The
// "jwks" member may be a JSON string, raw bytes or an already-decoded
// object.
func ParseConfig(source map[string]any) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  jwksDecodeHook,
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(source); err != nil {
		return Config{}, &ConfigError{Field: "config", Message: "could not decode", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values without parsing key material.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConfigError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("value %q fails %q", fmt.Sprint(fe.Value()), fe.Tag()),
		}
	}
	return &ConfigError{Field: "config", Message: "validation failed", Err: err}
}

var rawMessageType = reflect.TypeOf(json.RawMessage{})

func jwksDecodeHook(from, to reflect.Type, data any) (any, error) {
	if to != rawMessageType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return json.RawMessage(nil), nil
	case string:
		return json.RawMessage(v), nil
	case []byte:
		return json.RawMessage(v), nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
