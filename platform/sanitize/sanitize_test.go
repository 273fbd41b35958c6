package sanitize

import "testing"

func TestTextStripsMarkupAndTruncates(t *testing.T) {
	got := Text("  <b>price</b>\n\n renegotiated &lt;script&gt;x&lt;/script&gt; ", 0)
	if got != "price renegotiated x" {
		t.Fatalf("unexpected sanitized text %q", got)
	}

	if got := Text("ééééé", 3); got != "ééé" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := "  <br/> "
	if TextPtr(&blank, 10) != nil {
		t.Fatalf("expected nil for blank input")
	}
	if TextPtr(nil, 10) != nil {
		t.Fatalf("expected nil for nil input")
	}
}
