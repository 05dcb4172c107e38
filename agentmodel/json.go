package agentmodel

import (
	"bytes"
	"encoding/json"

	"github.com/trussdev/agentcore/agentcoreerr"
)

// DecodeStrict decodes data into v, rejecting unknown fields. cmd/apiserver
// uses it for HTTP request bodies. Workflow start input and activity
// payloads are decoded by the Temporal data converter instead, which does
// not reject unknown fields.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "decode %T", v)
	}
	return nil
}
