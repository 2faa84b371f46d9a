package common

import (
	"encoding/base64"
	"errors"
	"testing"
)

// ---------- MakeRandURLToken ----------

func TestMakeRandURLToken_LengthAndAlphabet(t *testing.T) {
	s, err := MakeRandURLToken(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 22 {
		t.Fatalf("expected 22 chars for 16 bytes, got %d (%q)", len(s), s)
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != 16 {
		t.Fatalf("expected 16 decoded bytes, got %d", len(raw))
	}
}

func TestMakeRandURLToken_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		s, err := MakeRandURLToken(16)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate token %q after %d draws", s, i)
		}
		seen[s] = struct{}{}
	}
}

func TestMakeRandURLToken_TooSmall(t *testing.T) {
	if _, err := MakeRandURLToken(8); err == nil {
		t.Fatalf("expected error for undersized token")
	}
}

// ---------- ValidationError ----------

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("title is required")
	if !errors.Is(err, ErrorValidation) {
		t.Fatalf("expected errors.Is(err, ErrorValidation)")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "title is required" {
		t.Fatalf("unexpected validation error: %#v", err)
	}
	if err.Error() != "validation error: title is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLinkErrors_WrapForbidden(t *testing.T) {
	for _, err := range []error{ErrLinkInactive, ErrLinkExpired, ErrLinkMaxUses} {
		if !errors.Is(err, ErrorForbidden) {
			t.Fatalf("%v must wrap ErrorForbidden", err)
		}
	}
	if !errors.Is(ErrTokenExpired, ErrInvalidToken) {
		t.Fatalf("ErrTokenExpired must wrap ErrInvalidToken")
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}
