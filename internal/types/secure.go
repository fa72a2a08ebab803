package types

import "log/slog"

// redactedPlaceholder replaces secret values in logs and serialized output.
const redactedPlaceholder = "***REDACTED***"

// redactedJSON is the pre-computed JSON encoding of the redacted placeholder.
var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (database URL, predictor API key) and
// refuses to reveal it through fmt, JSON, or slog. Call Unmask at the exact
// point the plaintext is required, nowhere else.
type SecretString string

// String returns the redacted placeholder. Invoked by fmt.Sprintf,
// fmt.Println, and anything else using the fmt.Stringer interface.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string, keeping
// secrets out of config dumps and API responses.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// LogValue implements slog.LogValuer so structured log entries carry the
// placeholder rather than the secret.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// Unmask returns the raw plaintext. Usage should be limited to constructing
// connection strings and Authorization headers.
func (s SecretString) Unmask() string {
	return string(s)
}
