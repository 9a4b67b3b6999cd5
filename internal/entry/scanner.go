package entry

import "unicode"

// tokenKind classifies a lexical token
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokPunct
)

// token is one lexeme of C-family source with its brace depth
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
	depth int
}

// scanOptions tunes the lexer for a language family
type scanOptions struct {
	preprocessor bool // C/C++ '#' lines
	templates    bool // JavaScript backtick strings
}

// scan tokenizes src, dropping comments, whitespace and preprocessor lines.
// A '{' carries the depth outside it and a '}' the depth after it closes, so
// both braces of a top-level body report depth 0.
func scan(src string, opts scanOptions) []token {
	var (
		tokens    []token
		depth     int
		i         int
		lineStart = true
	)
	n := len(src)

	for i < n {
		c := src[i]

		if c == '\n' {
			lineStart = true
			i++
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' {
			i++
			continue
		}

		if opts.preprocessor && c == '#' && lineStart {
			for i < n && src[i] != '\n' {
				if src[i] == '\\' && i+1 < n && src[i+1] == '\n' {
					i += 2
					continue
				}
				i++
			}
			continue
		}
		lineStart = false

		if c == '/' && i+1 < n && src[i+1] == '/' {
			for i < n && src[i] != '\n' {
				i++
			}
			continue
		}
		if c == '/' && i+1 < n && src[i+1] == '*' {
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
			continue
		}

		if c == '"' || c == '\'' || (opts.templates && c == '`') {
			start := i
			i = skipQuoted(src, i, c)
			tokens = append(tokens, token{kind: tokString, text: src[start:i], start: start, end: i, depth: depth})
			continue
		}

		if isIdentStart(c) {
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: src[start:i], start: start, end: i, depth: depth})
			continue
		}

		if c >= '0' && c <= '9' {
			start := i
			for i < n && (isIdentPart(src[i]) || src[i] == '.' || src[i] == '\'') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[start:i], start: start, end: i, depth: depth})
			continue
		}

		tok := token{kind: tokPunct, text: src[i : i+1], start: i, end: i + 1, depth: depth}
		switch c {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			tok.depth = depth
		}
		tokens = append(tokens, tok)
		i++
	}

	return tokens
}

// skipQuoted returns the index just past the literal opened at src[i].
func skipQuoted(src string, i int, quote byte) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			if quote != '`' {
				return i
			}
		}
		i++
	}
	return len(src)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// matchClose returns the index of the token closing the group opened at
// tokens[open], or -1.
func matchClose(tokens []token, open int) int {
	var closer string
	switch tokens[open].text {
	case "(":
		closer = ")"
	case "[":
		closer = "]"
	case "{":
		closer = "}"
	case "<":
		closer = ">"
	default:
		return -1
	}
	opener := tokens[open].text
	level := 0
	for i := open; i < len(tokens); i++ {
		if tokens[i].kind != tokPunct {
			continue
		}
		switch tokens[i].text {
		case opener:
			level++
		case closer:
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}
