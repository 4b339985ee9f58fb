package datagram

import (
	"bytes"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ClearToken is the reserved payload that resets the log instead of being
// logged. It is compared after whitespace and byte order mark trimming.
const ClearToken = "===CLEAR==="

// Kind classifies an inbound datagram.
type Kind int

const (
	// KindLine is a literal log line.
	KindLine Kind = iota
	// KindClear is the reset control token.
	KindClear
)

// String returns the metric label for the kind
func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Sink receives the operations decoded from datagrams.
type Sink interface {
	Append(line string)
	Reset()
}

// Decode converts a payload to text without ever rejecting it. Valid UTF-8
// is returned unchanged. Anything else is transcoded from its detected
// charset, and whatever still fails is replaced with U+FFFD. The boolean
// reports whether the fallback path was taken.
func Decode(payload []byte) (string, bool) {
	if utf8.Valid(payload) {
		return string(payload), false
	}

	if text, ok := transcode(payload); ok {
		return text, true
	}
	return strings.ToValidUTF8(string(payload), string(utf8.RuneError)), true
}

// Interpret decodes and trims a payload and classifies it.
func Interpret(payload []byte) (Kind, string, bool) {
	text, fallback := Decode(payload)
	text = strings.TrimFunc(text, isTrimmed)
	if text == ClearToken {
		return KindClear, text, fallback
	}
	return KindLine, text, fallback
}

// isTrimmed reports whether r is stripped from both ends of a payload.
// U+FEFF is not a space in Unicode but editors prepend it as a BOM.
func isTrimmed(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Apply interprets a payload and forwards it to the sink.
func Apply(sink Sink, payload []byte) Kind {
	kind, text, _ := Interpret(payload)
	apply(sink, kind, text)
	return kind
}

func apply(sink Sink, kind Kind, text string) {
	switch kind {
	case KindClear:
		sink.Reset()
	default:
		sink.Append(text)
	}
}

// transcode detects the payload charset and converts it to UTF-8.
func transcode(payload []byte) (string, bool) {
	label := DetectCharset(payload)
	if label == "utf-8" {
		return "", false
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(payload))
	if err != nil {
		return "", false
	}
	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

// DetectCharset returns the most likely charset label for the payload,
// defaulting to utf-8 when detection fails.
func DetectCharset(payload []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(payload)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
