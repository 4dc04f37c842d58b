package core

import "github.com/wavelang/wave/internal/codegen"

// Scanner primitives. The compiler scans raw bytes with one character of
// lookahead; there is no token stream.

func (c *Compiler) peek() byte {
	if c.pos < len(c.src) {
		return c.src[c.pos]
	}
	return 0
}

func (c *Compiler) peekN(n int) byte {
	if c.pos+n < len(c.src) {
		return c.src[c.pos+n]
	}
	return 0
}

func (c *Compiler) advance() byte {
	if c.pos < len(c.src) {
		b := c.src[c.pos]
		c.pos++
		return b
	}
	return 0
}

// skipSpace consumes whitespace and // line comments.
func (c *Compiler) skipSpace() {
	for c.pos < len(c.src) {
		switch ch := c.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			c.advance()
		case ch == '/' && c.peekN(1) == '/':
			c.advance()
			c.advance()
			for c.pos < len(c.src) && c.peek() != '\n' {
				c.advance()
			}
			if c.peek() == '\n' {
				c.advance()
			}
		default:
			return
		}
	}
}

// skipLine consumes the rest of the current line, newline included.
func (c *Compiler) skipLine() {
	for c.pos < len(c.src) && c.peek() != '\n' {
		c.advance()
	}
	if c.peek() == '\n' {
		c.advance()
	}
}

// match reports whether the source at the cursor starts with s.
func (c *Compiler) match(s string) bool {
	if c.pos+len(s) > len(c.src) {
		return false
	}
	return string(c.src[c.pos:c.pos+len(s)]) == s
}

// accept consumes s when the source starts with it.
func (c *Compiler) accept(s string) bool {
	if c.match(s) {
		c.pos += len(s)
		return true
	}
	return false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isIdentChar includes '.', so dotted names like syscall.write scan as a
// single identifier.
func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '.'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// parseIdent consumes an identifier at the cursor.
func (c *Compiler) parseIdent() string {
	start := c.pos
	for c.pos < len(c.src) && isIdentChar(c.peek()) && c.pos-start < codegen.MaxIdent-1 {
		c.advance()
	}
	return string(c.src[start:c.pos])
}

// parseString consumes a double-quoted string literal and resolves its
// escapes: \n \t \r \0 \xHH; any other \c yields c.
func (c *Compiler) parseString() []byte {
	var buf []byte
	if c.peek() == '"' {
		c.advance()
	}
	for c.pos < len(c.src) && c.peek() != '"' {
		ch := c.advance()
		if ch == '\\' && c.pos < len(c.src) {
			switch esc := c.advance(); esc {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '0':
				buf = append(buf, 0)
			case 'x':
				if c.pos+2 <= len(c.src) {
					hi := hexVal(c.advance())
					lo := hexVal(c.advance())
					buf = append(buf, byte(hi<<4|lo))
				}
			default:
				buf = append(buf, esc)
			}
		} else {
			buf = append(buf, ch)
		}
	}
	if c.peek() == '"' {
		c.advance()
	}
	return buf
}

func hexVal(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return 0
}

// parseNumber consumes an integer literal: optional leading minus, 0x hex,
// otherwise decimal. A fractional part is accepted and truncated, so 1.5
// parses to 1.
func (c *Compiler) parseNumber() int64 {
	var num int64
	neg := false

	if c.peek() == '-' {
		neg = true
		c.advance()
	}

	if c.peek() == '0' && c.peekN(1) == 'x' {
		c.advance()
		c.advance()
		for c.pos < len(c.src) && isHexDigit(c.peek()) {
			num = num*16 + int64(hexVal(c.advance()))
		}
	} else {
		for c.pos < len(c.src) && isDigit(c.peek()) {
			num = num*10 + int64(c.advance()-'0')
		}
	}

	if c.peek() == '.' {
		c.advance()
		for c.pos < len(c.src) && isDigit(c.peek()) {
			c.advance()
		}
	}

	if neg {
		return -num
	}
	return num
}

// parseFieldValue consumes a decimal literal keeping its fractional part.
// Only the unified block uses this; everywhere else numbers truncate to
// integers.
func (c *Compiler) parseFieldValue() float64 {
	var v float64
	neg := false

	if c.peek() == '-' {
		neg = true
		c.advance()
	}
	for c.pos < len(c.src) && isDigit(c.peek()) {
		v = v*10 + float64(c.advance()-'0')
	}
	if c.peek() == '.' {
		c.advance()
		frac := 0.1
		for c.pos < len(c.src) && isDigit(c.peek()) {
			v += float64(c.advance()-'0') * frac
			frac *= 0.1
		}
	}
	if neg {
		return -v
	}
	return v
}
