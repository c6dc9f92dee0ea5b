// Package storyapi decodes the Story gateway response envelope. Successful
// responses carry the payload under a top-level "result" field; failures carry
// {"error":{"message":...}}. Bodies without an envelope are passed through
// unchanged.
package storyapi

import (
	"bytes"
	"encoding/json"
)

// ExtractResult unwraps a gateway response, returning the JSON payload stored
// under the "result" field. If no such field exists the original body is
// returned.
func ExtractResult(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Result == nil {
		// Body is either not an object or does not include a result field.
		return append([]byte(nil), trimmed...), nil
	}
	return append([]byte(nil), envelope.Result...), nil
}

// DecodeResult decodes the JSON payload obtained via ExtractResult into out.
// When the response body is empty, out is populated with a JSON null.
func DecodeResult(body []byte, out any) error {
	payload, err := ExtractResult(body)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		payload = []byte("null")
	}
	return json.Unmarshal(payload, out)
}

// ErrorMessage extracts the gateway error message from a failure body.
// It returns "" when the body carries no recognisable error envelope.
func ErrorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}

// ErrorMessageFromJSON is ErrorMessage over an already-decoded JSON payload,
// as carried by httpx.HTTPError.
func ErrorMessageFromJSON(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	errObj, ok := obj["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := errObj["message"].(string)
	return msg
}
