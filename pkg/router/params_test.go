package router

import (
	"testing"
)

func TestDecodeParams(t *testing.T) {
	var target struct {
		Page  string   `param:"page"`
		ID    int      `param:"id"`
		Draft bool     `param:"draft"`
		Rest  []string `param:"rest"`
		Skip  string
	}

	params := map[string]string{
		"page":  "system",
		"id":    "42",
		"draft": "true",
		"rest":  "a/b",
	}
	if err := DecodeParams(params, &target); err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if target.Page != "system" || target.ID != 42 || !target.Draft {
		t.Errorf("unexpected result: %+v", target)
	}
	if len(target.Rest) != 2 || target.Rest[1] != "b" {
		t.Errorf("Rest = %v", target.Rest)
	}
}

func TestDecodeParamsErrors(t *testing.T) {
	var s struct {
		ID int `param:"id"`
	}
	if err := DecodeParams(map[string]string{"id": "x"}, &s); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if err := DecodeParams(nil, s); err == nil {
		t.Error("expected error for non-pointer target")
	}
	n := 0
	if err := DecodeParams(nil, &n); err == nil {
		t.Error("expected error for pointer to non-struct")
	}
	if err := DecodeParams(nil, nil); err != nil {
		t.Errorf("nil target: %v", err)
	}
}

func TestVariantKey(t *testing.T) {
	tests := map[string]string{
		"System":     "system",
		"user-prefs": "user_prefs",
		"a+b:c":      "a_b_c",
	}
	for in, want := range tests {
		if got := VariantKey(in); got != want {
			t.Errorf("VariantKey(%q) = %q, want %q", in, got, want)
		}
	}
}
