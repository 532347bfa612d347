package chain

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names a serialization codec for chain and swarm configuration.
type Format string

const (
	// FormatJSON is the structured-text default.
	FormatJSON Format = "json"
	// FormatYAML is the human-editable structured-text format.
	FormatYAML Format = "yaml"
	// FormatCBOR is the binary format.
	FormatCBOR Format = "cbor"
)

// Marshal encodes v in the given format, failing with
// *SerializationFormatError for unknown formats.
func Marshal(format Format, v any) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return data, nil
	case FormatCBOR:
		data, err := cbor.Marshal(v)
		if err != nil {
			return nil, &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return data, nil
	default:
		return nil, &SerializationFormatError{Format: string(format)}
	}
}

// Unmarshal decodes data in the given format into v. Corrupt payloads and
// unknown formats both surface as *SerializationFormatError.
func Unmarshal(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, v); err != nil {
			return &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return nil
	case FormatCBOR:
		if err := cbor.Unmarshal(data, v); err != nil {
			return &SerializationFormatError{Format: string(format), Reason: err.Error()}
		}
		return nil
	default:
		return &SerializationFormatError{Format: string(format)}
	}
}
