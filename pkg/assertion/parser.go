package assertion

import "strings"

// ParseAssertionString parses a compact check of the form
// "kind:value" into a Definition. A string without a colon, or
// whose prefix is not a known built-in kind, is treated as a
// JavaScript expression.
//
// Examples:
//
//	"contains:isValidCID" -> contains, "isValidCID"
//	"not_empty"           -> not_empty
//	"max_length:400"      -> max_length, "400"
//	"add(1, 2) === 3"     -> expression
func ParseAssertionString(s string) Definition {
	kind, value, found := strings.Cut(s, ":")
	kind = strings.TrimSpace(kind)

	switch kind {
	case KindContains, KindNotContains, KindDefines, KindMaxLength:
		if found {
			return Definition{Description: s, Kind: kind, Value: value}
		}
	case KindNotEmpty:
		if !found {
			return Definition{Description: s, Kind: kind}
		}
	}

	return Definition{Description: s, Test: s}
}
