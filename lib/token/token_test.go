package token

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	c := New([]byte("test-key"))

	original := Entry{Name: "widget", ID: 42}
	encoded, err := c.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.Contains(encoded, ".") {
		t.Fatalf("Encoded token %q should contain a signature separator", encoded)
	}

	decoded, err := c.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != original {
		t.Errorf("Decode() = %+v, want %+v", decoded, original)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	c := New([]byte("test-key"))
	e := Entry{Name: "widget", ID: 7}

	a, err := c.Encode(e)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	b, err := c.Encode(e)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if a != b {
		t.Errorf("Encode should be deterministic: %q != %q", a, b)
	}
}

func TestEncodeURLSafe(t *testing.T) {
	c := New([]byte("test-key"))
	encoded, err := c.Encode(Entry{Name: "some dir/with?odd&chars", ID: 1 << 40})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsAny(encoded, "/?&=+ %") {
		t.Errorf("Token %q should be URL path safe", encoded)
	}
}

func TestSignatureVerificationFailure(t *testing.T) {
	c := New([]byte("test-key"))

	encoded, err := c.Encode(Entry{Name: "test", ID: 123})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Tamper with the signature
	tampered := encoded[:len(encoded)-2] + "XX"
	if tampered == encoded {
		tampered = encoded[:len(encoded)-2] + "YY"
	}

	_, err = c.Decode(tampered)
	if !errors.Is(err, ErrSignatureInvalid) && !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected signature or format error, got: %v", err)
	}
}

func TestTamperedPayload(t *testing.T) {
	c := New([]byte("test-key"))

	good, _ := c.Encode(Entry{Name: "a", ID: 1})
	other, _ := c.Encode(Entry{Name: "b", ID: 2})

	// Payload of one token with the signature of another
	payload, _, _ := strings.Cut(other, ".")
	_, sig, _ := strings.Cut(good, ".")

	_, err := c.Decode(payload + "." + sig)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Expected ErrSignatureInvalid, got: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	c := New([]byte("test-key"))

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing separator", "invalidbase64withoutseparator"},
		{"empty signature", "abc."},
		{"empty payload", ".abc"},
		{"bad base64", "!!!.???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.input)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidFormat", tt.input, err)
			}
		})
	}
}

func TestDifferentKeysCannotDecode(t *testing.T) {
	c1 := New([]byte("key-one"))
	c2 := New([]byte("key-two"))

	encoded, err := c1.Encode(Entry{Name: "test", ID: 123})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := c2.Decode(encoded); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Expected ErrSignatureInvalid when decoding with different key, got %v", err)
	}
}

func TestLongKeyUsedAsIs(t *testing.T) {
	key := []byte("this-is-a-32-byte-key-for-hmac!!")
	c := New(key)
	if string(c.key) != string(key) {
		t.Error("32-byte key should be used without stretching")
	}
}
