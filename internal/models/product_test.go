package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalProductID(t *testing.T) {
	id := uuid.New()
	canonical := id.String()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"canonical passthrough", canonical, canonical, true},
		{"uppercase", strings.ToUpper(canonical), canonical, true},
		{"braced", "{" + canonical + "}", canonical, true},
		{"urn prefixed", "urn:uuid:" + canonical, canonical, true},
		{"surrounding whitespace", "  " + canonical + " ", canonical, true},
		{"not a uuid", "legacy-sku-42", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalProductID(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
