package coopsort

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ReadInts reads filename whole into memory and tokenizes signed decimal
// integers separated by any run of whitespace (space, tab, newline),
// grounded on original_source/task1/Array.c:readArrayFromFile. A leading
// '-' is part of the following token; a trailing non-whitespace token
// counts. On open/read failure it returns a nil slice and a wrapped
// error, never panics.
func ReadInts(filename string) ([]int32, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return tokenize(raw), nil
}

func isWS(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isTokenByte(b byte) bool { return b == '-' || (b >= '0' && b <= '9') }

// tokenize splits raw into maximal digit-or-leading-sign runs. Invalid
// characters inside a token (e.g. a second '-') yield an undefined value
// for that element via strconv's best-effort parse, never a crash.
func tokenize(raw []byte) []int32 {
	out := make([]int32, 0, len(raw)/4)
	n := len(raw)
	i := 0
	for i < n {
		for i < n && !isTokenByte(raw[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		i++
		for i < n && isTokenByte(raw[i]) {
			i++
		}
		tok := raw[start:i]
		v, err := strconv.ParseInt(string(tok), 10, 32)
		if err != nil {
			// malformed token (e.g. a bare "-" or an over-long run):
			// undefined value for this element, must not crash.
			v = 0
		}
		out = append(out, int32(v))
	}
	return out
}
