package token

import (
	"testing"
)

func TestLookupIdent(t *testing.T) {

	for k, v := range keywords {
		if v != LookupIdent(k) {
			t.Errorf("LookupIdent gave %s, wanted %s", LookupIdent(k), v)
		}
	}

	if "IDENT" != LookupIdent("notreallyanidentifier") {
		t.Errorf("Wanted IDENT, got %s", LookupIdent("notreallyanidentifier"))
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tk  Token
		exp string
	}{
		{tk: Token{Type: PLUS, Literal: "+"}, exp: `"+"`},
		{tk: Token{Type: PLUS, Literal: "+", Line: 3, Col: 9}, exp: `"+" at 3:9`},
	}

	for _, tt := range tests {
		if tt.tk.String() != tt.exp {
			t.Errorf("Token.String() gave %s, wanted %s", tt.tk.String(), tt.exp)
		}
	}
}
