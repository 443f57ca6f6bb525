// Package lexer is sightline's lexical primitive: a line-oriented scanner
// that carries multi-line state (block comments, raw strings) across lines,
// plus token-level symbol extraction for the locator.
package lexer

import "unicode"

// State is the lexical carry-over at the start of a line. The zero value
// is the correct state for line 0 of any file.
type State struct {
	InBlockComment bool
	InRawString    bool
}

// TokenKind classifies a scanned token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenKeyword
	TokenNumber
	TokenString
	TokenComment
	TokenPunct
)

// Token is a single lexical token within one line. Columns are zero-based
// byte offsets; EndCol is exclusive.
type Token struct {
	Kind     TokenKind
	Text     string
	StartCol int
	EndCol   int
}

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ScanLine tokenizes a single line given the lexical state at its start,
// returning the tokens on the line and the state at the start of the next
// line. Interpreted strings and runes never span lines; block comments and
// raw strings do.
func ScanLine(state State, line string) ([]Token, State) {
	var tokens []Token
	runes := []rune(line)
	i := 0

	emit := func(kind TokenKind, start, end int) {
		tokens = append(tokens, Token{
			Kind:     kind,
			Text:     string(runes[start:end]),
			StartCol: start,
			EndCol:   end,
		})
	}

	for i < len(runes) {
		switch {
		case state.InBlockComment:
			start := i
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			emit(TokenComment, start, i)
			if closed {
				state.InBlockComment = false
			}

		case state.InRawString:
			start := i
			closed := false
			for i < len(runes) {
				if runes[i] == '`' {
					i++
					closed = true
					break
				}
				i++
			}
			emit(TokenString, start, i)
			if closed {
				state.InRawString = false
			}

		case runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '/':
			emit(TokenComment, i, len(runes))
			i = len(runes)

		case runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '*':
			state.InBlockComment = true
			i += 2
			// Loop re-enters the block-comment arm for the remainder,
			// but the opening delimiter belongs to the comment token too.
			start := i - 2
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			emit(TokenComment, start, i)
			if closed {
				state.InBlockComment = false
			}

		case runes[i] == '`':
			state.InRawString = true
			start := i
			i++
			closed := false
			for i < len(runes) {
				if runes[i] == '`' {
					i++
					closed = true
					break
				}
				i++
			}
			emit(TokenString, start, i)
			if closed {
				state.InRawString = false
			}

		case runes[i] == '"' || runes[i] == '\'':
			quote := runes[i]
			start := i
			i++
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					i += 2
					continue
				}
				if runes[i] == quote {
					i++
					break
				}
				i++
			}
			emit(TokenString, start, i)

		case isIdentStart(runes[i]):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			kind := TokenIdent
			if keywords[string(runes[start:i])] {
				kind = TokenKeyword
			}
			emit(kind, start, i)

		case unicode.IsDigit(runes[i]):
			start := i
			for i < len(runes) && (isIdentPart(runes[i]) || runes[i] == '.') {
				i++
			}
			emit(TokenNumber, start, i)

		case unicode.IsSpace(runes[i]):
			i++

		default:
			emit(TokenPunct, i, i+1)
			i++
		}
	}
	return tokens, state
}

// StateAt derives the lexical state at the start of line by scanning the
// source from the beginning. This is the slow path behind the scanner
// bridge's fallback; cost is linear in the prefix length.
func StateAt(source string, line int) State {
	var state State
	if line <= 0 {
		return state
	}
	start := 0
	current := 0
	for i := 0; i < len(source) && current < line; i++ {
		if source[i] == '\n' {
			_, state = ScanLine(state, source[start:i])
			start = i + 1
			current++
		}
	}
	return state
}
