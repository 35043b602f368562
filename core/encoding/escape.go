// Package encoding provides shared text escaping utilities for the dumpers
// and the XML codec.
package encoding

import (
	"strings"
)

// EscapeXMLText escapes only the basic XML entities for text content.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities. Newlines
// become character references so they survive attribute value
// normalization on re-parse.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "\n", "&#10;")
	return s
}

// EscapeHTML escapes special characters for HTML content.
// Escapes: & < > "
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// EscapeLaTeX escapes special characters for LaTeX documents.
// Escapes: \ { } $ % & # _ ^ ~
func EscapeLaTeX(s string) string {
	// Use placeholder for backslash to avoid re-escaping braces in \textbackslash{}
	const placeholder = "\x00BACKSLASH\x00"
	s = strings.ReplaceAll(s, "\\", placeholder)

	replacements := []struct {
		old, new string
	}{
		{"{", "\\{"},
		{"}", "\\}"},
		{"$", "\\$"},
		{"%", "\\%"},
		{"&", "\\&"},
		{"#", "\\#"},
		{"_", "\\_"},
		{"^", "\\^{}"},
		{"~", "\\~{}"},
	}

	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}

	s = strings.ReplaceAll(s, placeholder, "\\textbackslash{}")
	return s
}
