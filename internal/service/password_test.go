package service

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "Abcdef12" {
		t.Fatalf("hash must be non-empty and differ from the plaintext")
	}
	if !VerifyPassword("Abcdef12", hash) {
		t.Fatalf("expected hash to verify against its input")
	}
	if VerifyPassword("Abcdef13", hash) {
		t.Fatalf("expected different password to fail verification")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected fresh salt per call")
	}
	if !VerifyPassword("Abcdef12", first) || !VerifyPassword("Abcdef12", second) {
		t.Fatalf("both hashes must verify")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("Abcdef12", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must be a verification failure")
	}
	if VerifyPassword("Abcdef12", "") {
		t.Fatalf("empty hash must be a verification failure")
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Abcdef12", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tc := range cases {
		err := validatePassword(tc.password)
		if tc.ok && err != nil {
			t.Fatalf("%q: expected valid, got %v", tc.password, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected policy rejection", tc.password)
		}
	}
}
