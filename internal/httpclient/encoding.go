package httpclient

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeWithFallback decodes raw using hint, then falls back to the
// other known encoding when the replacement-character ratio exceeds
// replacementCharThreshold (spec.md §4.2). Per spec.md §9's open
// question, no attempt is made to re-decode sub-fragments of a mixed
// document — the fallback is whole-body only.
func decodeWithFallback(raw []byte, hint Encoding, logger arbor.ILogger) string {
	primary := decode(raw, hint)
	if replacementRatio(primary, len(raw)) < replacementCharThreshold {
		return primary
	}

	other := EncodingUTF8
	if hint == EncodingUTF8 {
		other = EncodingBig5
	}
	fallback := decode(raw, other)
	if replacementRatio(fallback, len(raw)) < replacementRatio(primary, len(raw)) {
		logger.Warn().Str("from", string(hint)).Str("to", string(other)).Msg("httpclient: encoding fallback applied")
		return fallback
	}
	return primary
}

func decode(raw []byte, enc Encoding) string {
	if enc == EncodingBig5 {
		decoded, _, err := transform.Bytes(traditionalchinese.Big5.NewDecoder(), raw)
		if err != nil {
			return string(raw)
		}
		return string(decoded)
	}
	decoded, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// replacementRatio is the number of U+FFFD runes in s per byte of the
// raw body it was decoded from.
func replacementRatio(s string, rawLen int) float64 {
	if rawLen == 0 {
		return 0
	}
	count := strings.Count(s, string(utf8.RuneError))
	return float64(count) / float64(rawLen)
}
