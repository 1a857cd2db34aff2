package langstring

import "testing"

func TestRoundTrip(t *testing.T) {
	blob := Encode("hello", "en-US")
	text, lang, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "hello" || lang != "en-US" {
		t.Errorf("got (%q, %q), want (hello, en-US)", text, lang)
	}
}

func TestRoundTripEmptyLang(t *testing.T) {
	blob := Encode("hello", "")
	text, lang, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text != "hello" || lang != "" {
		t.Errorf("got (%q, %q), want (hello, \"\")", text, lang)
	}
}

func TestDecodeMissingSeparator(t *testing.T) {
	if _, _, err := Decode([]byte("no separator here")); err == nil {
		t.Error("expected error decoding blob without NUL separator")
	}
}

func TestMatchesLanguage(t *testing.T) {
	blob := Encode("hello", "en-US")
	if !MatchesLanguage(blob, "en-US") {
		t.Error("expected match for en-US")
	}
	if MatchesLanguage(blob, "fr") {
		t.Error("expected no match for fr")
	}
	// A plain TEXT value (no separator) never matches.
	if MatchesLanguage([]byte("plain text"), "en-US") {
		t.Error("plain text should never match a language tag")
	}
}
