package storyapi

import (
	"math/big"
	"testing"
)

func TestExtractResult(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "direct object",
			body:     `{"result":{"txHash":"0xabc"}}`,
			expected: `{"txHash":"0xabc"}`,
		},
		{
			name:     "plain string",
			body:     `{"result":"hello"}`,
			expected: `"hello"`,
		},
		{
			name:     "no envelope",
			body:     `{"txHash":"0xabc"}`,
			expected: `{"txHash":"0xabc"}`,
		},
		{
			name:     "null passthrough",
			body:     `null`,
			expected: `null`,
		},
		{
			name:     "empty body",
			body:     ``,
			expected: ``,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractResult([]byte(tc.body))
			if err != nil {
				t.Fatalf("ExtractResult returned error: %v", err)
			}
			if string(got) != tc.expected {
				t.Fatalf("ExtractResult mismatch: expected %q, got %q", tc.expected, string(got))
			}
		})
	}
}

func TestDecodeResult(t *testing.T) {
	body := []byte(`{"result":{"txHash":"0xabc","licenseTermsId":"5"}}`)
	var payload struct {
		TxHash         string `json:"txHash"`
		LicenseTermsID string `json:"licenseTermsId"`
	}
	if err := DecodeResult(body, &payload); err != nil {
		t.Fatalf("DecodeResult error: %v", err)
	}
	if payload.TxHash != "0xabc" || payload.LicenseTermsID != "5" {
		t.Fatalf("DecodeResult mismatch: %+v", payload)
	}

	var nullPayload struct {
		TxHash string `json:"txHash"`
	}
	if err := DecodeResult(nil, &nullPayload); err != nil {
		t.Fatalf("DecodeResult nil body: %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	if msg := ErrorMessage([]byte(`{"error":{"message":"execution reverted"}}`)); msg != "execution reverted" {
		t.Fatalf("ErrorMessage mismatch: %q", msg)
	}
	if msg := ErrorMessage([]byte(`{"result":"ok"}`)); msg != "" {
		t.Fatalf("expected empty message, got %q", msg)
	}
	if msg := ErrorMessage(nil); msg != "" {
		t.Fatalf("expected empty message for nil body, got %q", msg)
	}
}

func TestErrorMessageFromJSON(t *testing.T) {
	payload := map[string]any{"error": map[string]any{"message": "nonce too low"}}
	if msg := ErrorMessageFromJSON(payload); msg != "nonce too low" {
		t.Fatalf("ErrorMessageFromJSON mismatch: %q", msg)
	}
	if msg := ErrorMessageFromJSON("not an object"); msg != "" {
		t.Fatalf("expected empty message, got %q", msg)
	}
}

func TestParseBig(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{in: "5", expected: "5"},
		{in: " 42 ", expected: "42"},
		{in: "0x10", expected: "16"},
		{in: "123456789012345678901234567890", expected: "123456789012345678901234567890"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseBig(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseBig(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseBig(%q): %v", tc.in, err)
		}
		if got.String() != tc.expected {
			t.Fatalf("ParseBig(%q) = %s, expected %s", tc.in, got, tc.expected)
		}
	}

	opt, err := ParseOptionalBig("")
	if err != nil || opt != nil {
		t.Fatalf("ParseOptionalBig empty: %v %v", opt, err)
	}
	if FormatBig(nil) != "0" {
		t.Fatalf("FormatBig(nil) mismatch")
	}
	if FormatBig(big.NewInt(7)) != "7" {
		t.Fatalf("FormatBig(7) mismatch")
	}
}
