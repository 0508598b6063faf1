package config

import (
	"strings"
)

// CredentialKind tells whether a configured secret can be used.
type CredentialKind int

const (
	CredentialUnset CredentialKind = iota
	CredentialPlaceholder
	CredentialReal
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialPlaceholder:
		return "placeholder"
	case CredentialReal:
		return "real"
	default:
		return "unset"
	}
}

// Credential is a secret classified once at load time.
type Credential struct {
	kind  CredentialKind
	value string
}

var placeholderValues = map[string]bool{
	"changeme":          true,
	"your-api-key-here": true,
	"xxx":               true,
}

// ParseCredential classifies a raw configuration value.
func ParseCredential(raw string) Credential {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Credential{kind: CredentialUnset}
	}
	upper := strings.ToUpper(v)
	if strings.HasPrefix(upper, "YOUR_") || strings.Contains(upper, "PLACEHOLDER") || placeholderValues[strings.ToLower(v)] {
		return Credential{kind: CredentialPlaceholder, value: v}
	}
	return Credential{kind: CredentialReal, value: v}
}

// RealCredential wraps a value known to be a usable secret.
func RealCredential(v string) Credential {
	return Credential{kind: CredentialReal, value: v}
}

func (c Credential) Kind() CredentialKind { return c.kind }

func (c Credential) IsReal() bool { return c.kind == CredentialReal }

// Value returns the secret. It is empty unless the credential is real.
func (c Credential) Value() string {
	if c.kind != CredentialReal {
		return ""
	}
	return c.value
}

// String redacts the secret so credentials can be logged.
func (c Credential) String() string {
	switch c.kind {
	case CredentialReal:
		r := []rune(c.value)
		if len(r) <= 4 {
			return "****"
		}
		return string(r[:4]) + "****"
	case CredentialPlaceholder:
		return "<placeholder>"
	default:
		return "<unset>"
	}
}

// UnmarshalYAML lets credentials be written as plain strings in config.yaml.
func (c *Credential) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*c = ParseCredential(raw)
	return nil
}
