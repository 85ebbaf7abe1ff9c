package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Control characters forbidden by XML 1.0 are carried through the decoder as
// runes of a private-use block and mapped back afterwards.
const controlBase = 0x10FF00

var charRefPattern = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)

func isForbiddenControl(r rune) bool {
	return r >= 0 && r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

// literalSections are copied without reference rewriting: their content is
// literal text, so "&#0;" inside them is four characters and not a NUL.
var literalSections = []struct{ open, close []byte }{
	{[]byte("<![CDATA["), []byte("]]>")},
	{[]byte("<!--"), []byte("-->")},
}

// protectInput rewrites forbidden character references outside CDATA and
// comments, and raw control bytes everywhere, so that encoding/xml accepts the document.
func protectInput(data []byte) []byte {
	var rewritten []byte
	for len(data) > 0 {
		start, end := nextLiteralSection(data)
		if start < 0 {
			rewritten = append(rewritten, protectRefs(data)...)
			break
		}
		rewritten = append(rewritten, protectRefs(data[:start])...)
		rewritten = append(rewritten, data[start:end]...)
		data = data[end:]
	}

	out := make([]byte, 0, len(rewritten))
	for _, b := range rewritten {
		if isForbiddenControl(rune(b)) {
			out = utf8.AppendRune(out, controlBase+rune(b))
			continue
		}
		out = append(out, b)
	}
	return out
}

// nextLiteralSection returns the bounds of the first CDATA section or comment
// in data, or -1 when there is none. An unterminated section runs to the end.
func nextLiteralSection(data []byte) (start, end int) {
	start = -1
	var opening, closing []byte
	for _, sec := range literalSections {
		if i := bytes.Index(data, sec.open); i >= 0 && (start < 0 || i < start) {
			start, opening, closing = i, sec.open, sec.close
		}
	}
	if start < 0 {
		return -1, -1
	}
	body := start + len(opening)
	if i := bytes.Index(data[body:], closing); i >= 0 {
		return start, body + i + len(closing)
	}
	return start, len(data)
}

func protectRefs(data []byte) []byte {
	return charRefPattern.ReplaceAllFunc(data, func(ref []byte) []byte {
		code := string(ref[2 : len(ref)-1])
		var n int64
		var err error
		if code[0] == 'x' {
			n, err = strconv.ParseInt(code[1:], 16, 32)
		} else {
			n, err = strconv.ParseInt(code, 10, 32)
		}
		if err != nil || !isForbiddenControl(rune(n)) {
			return ref
		}
		return utf8.AppendRune(nil, controlBase+rune(n))
	})
}

// restore maps protected runes back to the control characters they stand for
func restore(s string) string {
	if !strings.ContainsFunc(s, isProtected) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isProtected(r) {
			r -= controlBase
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isProtected(r rune) bool {
	return r >= controlBase && r < controlBase+0x20
}

// protectString replaces forbidden control characters before encoding
func protectString(s string) string {
	if !strings.ContainsFunc(s, isForbiddenControl) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isForbiddenControl(r) {
			r += controlBase
		}
		b.WriteRune(r)
	}
	return b.String()
}

// encodeProtected turns protected runes in encoder output into numeric character references
func encodeProtected(data []byte) []byte {
	if !strings.ContainsFunc(string(data), isProtected) {
		return data
	}
	var out []byte
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if isProtected(r) {
			out = append(out, "&#"+strconv.Itoa(int(r-controlBase))+";"...)
		} else {
			out = append(out, data[:size]...)
		}
		data = data[size:]
	}
	return out
}
