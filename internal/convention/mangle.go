package convention

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

// reserved are words that cannot be used as binding identifiers in the
// generated modules.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"await": true, "implements": true, "interface": true, "package": true,
	"private": true, "protected": true, "public": true,
}

// MangleVariant derives the export identifier of a page variant: the
// extension and leading "+" are stripped, separators become "_" and the
// result is lower-cased.
func MangleVariant(base string) string {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimPrefix(name, VariantPrefix)
	return identifier(strings.ToLower(name))
}

// MangleComponent derives the export identifier of a component, preserving
// case.
func MangleComponent(base string) string {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return identifier(name)
}

// VariantKey normalizes a requested page parameter the same way the
// generated dispatcher does before looking it up.
func VariantKey(page string) string {
	return router.VariantKey(page)
}

// VariantKeyOf returns the lookup key of a variant file: its name without
// extension and "+", normalized by VariantKey.
func VariantKeyOf(base string) string {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return VariantKey(strings.TrimPrefix(name, VariantPrefix))
}

// Pascal upper-cases the first letter of a mangled name.
func Pascal(name string) string {
	id := identifier(name)
	if id == "" {
		return id
	}
	r := []rune(id)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// identifier maps name onto a valid module identifier. "-", "+" and ":" become
// "_"; so does any other character that cannot appear in an identifier.
func identifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	id := b.String()
	if id == "" {
		return "_"
	}
	if reserved[id] {
		return id + "_"
	}
	return id
}
