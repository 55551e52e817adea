package fields

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema pins the wire contract for the fields payload embedded in a
// completed status response. Validation happens before decoding so a
// misbehaving pipeline fails the poll loudly instead of producing a half
// empty field list.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["fields"],
  "properties": {
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["field_name"],
        "properties": {
          "field_name": {"type": "string"},
          "field_value": {"type": "string"},
          "field_type": {"type": "string"},
          "page": {"type": "integer", "minimum": 0},
          "confidence": {"type": ["number", "string", "null"]},
          "top_left_pct": {"$ref": "#/$defs/point"},
          "center_pct": {"$ref": "#/$defs/point"},
          "size_pct": {
            "type": "object",
            "required": ["w", "h"],
            "properties": {
              "w": {"type": "number"},
              "h": {"type": "number"}
            }
          }
        }
      }
    }
  },
  "$defs": {
    "point": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"}
      }
    }
  }
}`

var compiledPayloadSchema = jsonschema.MustCompileString("fields-payload.json", payloadSchema)

// DecodePayload validates and decodes a raw fields payload into normalized
// fields, ready for classification.
func DecodePayload(raw []byte) ([]ExtractedField, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("fields payload is not valid JSON: %w", err)
	}
	if err := compiledPayloadSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("fields payload failed schema validation: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode fields payload: %w", err)
	}
	return Normalize(payload.Fields), nil
}
