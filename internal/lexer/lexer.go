// Package lexer turns Oreo source text into a token stream, per spec.md
// §4.1: word keywords matched with a trailing word-boundary, symbolic
// keywords matched literally (longer operators listed before their
// single-character prefixes so they win), then patterned tokens tried in a
// fixed order (NUMBER, ID_PAREN, ID, STRING, COMMENT). On failure it
// produces a *diag.Error carrying a context-sensitive suggestion.
package lexer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/token"
)

// wordKeywords must be matched with a word boundary immediately after the
// literal text, so "programming" lexes as ID, not PROGRAM followed by ID.
var wordKeywords = []string{
	"program", "begin", "end", "var", "print", "println", "get", "while",
	"do", "if", "then", "else", "or", "and", "not", "true", "false", "procedure",
	"return",
}

// symbolKeywords are matched with no boundary requirement. Order matters:
// multi-character operators must precede their single-character prefixes
// (":=" before nothing clashes, but "<=" before "<" and ">=" before ">" do).
var symbolKeywords = []string{
	";", ":=", "+", "-", "*", "/", "(", ")", "<=", ">=", "==", "<", ">", ",",
}

var (
	reNumber  = regexp.MustCompile(`^\d+`)
	reIDParen = regexp.MustCompile(`^[A-Za-z]\w*\(`)
	reID      = regexp.MustCompile(`^[A-Za-z]\w*`)
	reComment = regexp.MustCompile(`(?s)^\{-.*?-\}`)
	reWord    = regexp.MustCompile(`^\S+`)
)

// Lex scans text left to right and returns its token stream, in order,
// ending with no explicit end-marker token (callers append one if their
// consumer wants it). On the first unrecognised input it returns a
// *diag.Error describing where and why.
func Lex(text string) ([]token.Token, error) {
	var tokens []token.Token

	lineStarts := computeLineStarts(text)

	pos := 0
	for pos < len(text) {
		if isSpace(text[pos]) {
			pos++
			continue
		}

		line, col := lineColAt(lineStarts, pos)
		remaining := text[pos:]

		if lex, ok := matchSymbol(remaining); ok {
			tokens = append(tokens, token.Token{Class: token.Class(lex), Line: line, Col: col})
			pos += len(lex)
			continue
		}

		if kw, ok := matchWordKeyword(remaining); ok {
			tokens = append(tokens, token.Token{Class: token.Class(strings.ToUpper(kw)), Line: line, Col: col})
			pos += len(kw)
			continue
		}

		if lexeme, class, attr, ok := matchPatterned(remaining); ok {
			if class != "" {
				tokens = append(tokens, token.Token{Class: class, Attribute: attr, Line: line, Col: col})
			}
			pos += len(lexeme)
			continue
		}

		return nil, lexError(remaining, line, col, lineAt(lineStarts, text, line))
	}

	fillSourceLines(tokens, text, lineStarts)

	return tokens, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

// matchSymbol tries each symbolic operator/punctuation keyword in the order
// they're declared, returning the first literal prefix match.
func matchSymbol(remaining string) (string, bool) {
	for _, kw := range symbolKeywords {
		if strings.HasPrefix(remaining, kw) {
			return kw, true
		}
	}
	return "", false
}

// matchWordKeyword tries each word keyword, requiring that the character
// immediately following the match (if any) not continue an identifier.
func matchWordKeyword(remaining string) (string, bool) {
	for _, kw := range wordKeywords {
		if !strings.HasPrefix(remaining, kw) {
			continue
		}
		after := remaining[len(kw):]
		if after == "" || !isIdentChar(after[0]) {
			return kw, true
		}
	}
	return "", false
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// matchPatterned tries NUMBER, ID_PAREN, ID, STRING, COMMENT in that order.
// COMMENT matches are discarded (class returned empty) but still consume
// input, per spec.md §4.1.
func matchPatterned(remaining string) (lexeme string, class token.Class, attribute string, ok bool) {
	if m := reNumber.FindString(remaining); m != "" {
		return m, token.Number, m, true
	}
	if m := reIDParen.FindString(remaining); m != "" {
		return m, token.IDParen, m, true
	}
	if m := reID.FindString(remaining); m != "" {
		return m, token.ID, m, true
	}
	if lexeme, attr, ok := matchString(remaining); ok {
		return lexeme, token.String, attr, true
	}
	if m := reComment.FindString(remaining); m != "" {
		return m, "", "", true
	}
	return "", "", "", false
}

// matchString matches a single- or double-quoted, non-nesting string
// literal and returns its unquoted contents.
func matchString(remaining string) (lexeme, attribute string, ok bool) {
	if len(remaining) == 0 {
		return "", "", false
	}
	quote := remaining[0]
	if quote != '\'' && quote != '"' {
		return "", "", false
	}
	end := strings.IndexByte(remaining[1:], quote)
	if end < 0 {
		return "", "", false
	}
	return remaining[:end+2], remaining[1 : end+1], true
}

func lexError(remaining string, line, col int, contextLine string) *diag.Error {
	message := "unrecognised token"

	switch {
	case remaining[0] == '\'' || remaining[0] == '"':
		message = "unclosed string"
	case strings.HasPrefix(remaining, "{-"):
		message = "unclosed comment"
	default:
		word := reWord.FindString(remaining)
		if best, ratio := bestKeywordMatch(word); ratio > 0.5 {
			message += " - did you mean '" + best + "'?"
		}
	}

	return diag.New(diag.KindLex, line, col, message, contextLine)
}

// bestKeywordMatch finds the keyword (from either list, lower-cased) with
// the highest longest-common-subsequence similarity ratio to word.
func bestKeywordMatch(word string) (string, float64) {
	word = strings.ToLower(word)

	all := make([]string, 0, len(wordKeywords)+len(symbolKeywords))
	all = append(all, wordKeywords...)
	for _, s := range symbolKeywords {
		all = append(all, strings.ToLower(s))
	}
	sort.Strings(all)

	var best string
	var bestRatio float64
	for _, kw := range all {
		r := lcsRatio(kw, word)
		if r > bestRatio {
			bestRatio = r
			best = kw
		}
	}
	return best, bestRatio
}

// lcsRatio is 2*|LCS(a,b)| / (len(a)+len(b)), the standard
// longest-common-subsequence-based similarity measure.
func lcsRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	l := lcsLen(a, b)
	return 2 * float64(l) / float64(len(a)+len(b))
}

func lcsLen(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// computeLineStarts returns the byte offset of the start of each line (line
// i starts at lineStarts[i-1], 1-indexed by line number).
func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineColAt(lineStarts []int, pos int) (line, col int) {
	line = sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > pos })
	col = pos - lineStarts[line-1] + 1
	return line, col
}

func lineAt(lineStarts []int, text string, line int) string {
	start := lineStarts[line-1]
	end := len(text)
	if idx := strings.IndexByte(text[start:], '\n'); idx >= 0 {
		end = start + idx
	}
	return strings.TrimRight(text[start:end], "\r")
}

// fillSourceLines assigns each token's SourceLine from the full text of the
// line it was lexed on.
func fillSourceLines(tokens []token.Token, text string, lineStarts []int) {
	for i := range tokens {
		tokens[i].SourceLine = lineAt(lineStarts, text, tokens[i].Line)
	}
}
