package config

// redacted is what a Secret renders as anywhere it could leak into logs or
// serialized output.
const redacted = "**********"

// Secret holds a credential string. It redacts itself in String, JSON, and
// YAML output; call Reveal to get the underlying value.
type Secret string

// Reveal returns the raw credential value.
func (s Secret) Reveal() string {
	return string(s)
}

// IsSet reports whether a value is present.
func (s Secret) IsSet() bool {
	return s != ""
}

// String implements fmt.Stringer with the value redacted.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// MarshalJSON redacts the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	return []byte(`"` + redacted + `"`), nil
}

// MarshalYAML redacts the value.
func (s Secret) MarshalYAML() (any, error) {
	if s == "" {
		return "", nil
	}
	return redacted, nil
}
