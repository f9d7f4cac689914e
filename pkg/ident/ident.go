// Package ident validates names used as identifiers in generated Python code.
package ident

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// pythonKeywords are the hard keywords of Python 3.
var pythonKeywords = map[string]bool{
	"False":    true,
	"None":     true,
	"True":     true,
	"and":      true,
	"as":       true,
	"assert":   true,
	"async":    true,
	"await":    true,
	"break":    true,
	"class":    true,
	"continue": true,
	"def":      true,
	"del":      true,
	"elif":     true,
	"else":     true,
	"except":   true,
	"finally":  true,
	"for":      true,
	"from":     true,
	"global":   true,
	"if":       true,
	"import":   true,
	"in":       true,
	"is":       true,
	"lambda":   true,
	"nonlocal": true,
	"not":      true,
	"or":       true,
	"pass":     true,
	"raise":    true,
	"return":   true,
	"try":      true,
	"while":    true,
	"with":     true,
	"yield":    true,
}

// IsKeyword reports whether name is a reserved word of the target language.
func IsKeyword(name string) bool {
	return pythonKeywords[name]
}

// IsValid reports whether name can be used verbatim as an identifier in
// generated code: a letter or underscore followed by letters, digits or
// underscores, in NFKC normal form, and not a keyword.
//
// Python folds identifiers with NFKC when it reads source, so a name that is
// not already normalized would silently alias a different spelling.
func IsValid(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	if !norm.NFKC.IsNormalString(name) {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return !IsKeyword(name)
}
