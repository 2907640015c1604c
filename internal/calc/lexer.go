package calc

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp // + - * / ^ % !
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

// lex splits src into tokens. The multiplication and division signs × and ÷
// and the letter π are accepted as aliases.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r >= '0' && r <= '9' || r == '.':
			j := scanNumber(src, i)
			text := src[i:j]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errAt(KindSyntax, i, "bad number %q", text)
			}
			toks = append(toks, token{kind: tokNum, pos: i, text: text, num: v})
			i = j
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, pos: i, text: "pi"})
			i += w
		case unicode.IsLetter(r) || r == '_':
			j := i + w
			for j < len(src) {
				r2, w2 := utf8.DecodeRuneInString(src[j:])
				if r2 == 'π' || !(unicode.IsLetter(r2) || unicode.IsDigit(r2) || r2 == '_') {
					break
				}
				j += w2
			}
			toks = append(toks, token{kind: tokIdent, pos: i, text: src[i:j]})
			i = j
		case r == '×':
			toks = append(toks, token{kind: tokOp, pos: i, text: "*"})
			i += w
		case r == '÷':
			toks = append(toks, token{kind: tokOp, pos: i, text: "/"})
			i += w
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^' || r == '%' || r == '!':
			toks = append(toks, token{kind: tokOp, pos: i, text: string(r)})
			i += w
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i, text: "("})
			i += w
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i, text: ")"})
			i += w
		case r == ',':
			toks = append(toks, token{kind: tokComma, pos: i, text: ","})
			i += w
		default:
			return nil, errAt(KindSyntax, i, "unexpected %q", r)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// scanNumber returns the end of the number starting at i. An exponent is only
// taken when digits follow, so "2e" lexes as 2 followed by the constant e.
func scanNumber(src string, i int) int {
	j := i
	for j < len(src) && (isDigit(src[j]) || src[j] == '.') {
		j++
	}
	if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
		k := j + 1
		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}
		if k < len(src) && isDigit(src[k]) {
			for k < len(src) && isDigit(src[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
