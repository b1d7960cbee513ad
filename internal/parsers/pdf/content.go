package pdf

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokOperator
	tokArrayStart
	tokArrayEnd
	tokOther
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// operand is a string, a number or an array of operands.
type operand struct {
	str   *string
	num   float64
	isNum bool
	array []operand
}

// kerningSpace is the TJ displacement (thousandths of text space) treated
// as a word gap.
const kerningSpace = -200

// extractText returns one paragraph per text object of a decoded page
// content stream.
func extractText(content []byte) []string {
	var (
		s          = &scanner{data: content}
		paragraphs []string
		lines      []string
		line       strings.Builder
		operands   []operand
		arrays     [][]operand
		lastY      float64
		haveY      bool
	)

	flushLine := func() {
		if t := strings.TrimSpace(line.String()); t != "" {
			lines = append(lines, t)
		}
		line.Reset()
	}
	flushParagraph := func() {
		flushLine()
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, " "))
		}
		lines = nil
	}
	push := func(o operand) {
		if n := len(arrays); n > 0 {
			arrays[n-1] = append(arrays[n-1], o)
			return
		}
		operands = append(operands, o)
	}
	lastString := func() string {
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].str != nil {
				return *operands[i].str
			}
		}
		return ""
	}
	number := func(i int) (float64, bool) {
		if i < 0 || i >= len(operands) || !operands[i].isNum {
			return 0, false
		}
		return operands[i].num, true
	}

	for {
		tok := s.next()
		switch tok.kind {
		case tokEOF:
			flushParagraph()
			return paragraphs
		case tokString:
			str := tok.text
			push(operand{str: &str})
		case tokNumber:
			push(operand{num: tok.num, isNum: true})
		case tokArrayStart:
			arrays = append(arrays, nil)
		case tokArrayEnd:
			if n := len(arrays); n > 0 {
				arr := arrays[n-1]
				arrays = arrays[:n-1]
				push(operand{array: arr})
			}
		case tokOther:
			push(operand{})
		case tokOperator:
			switch tok.text {
			case "BT":
				haveY = false
			case "ET":
				flushParagraph()
			case "Tj":
				line.WriteString(lastString())
			case "'", "\"":
				flushLine()
				line.WriteString(lastString())
			case "TJ":
				if len(operands) > 0 {
					for _, el := range operands[len(operands)-1].array {
						switch {
						case el.str != nil:
							line.WriteString(*el.str)
						case el.isNum && el.num <= kerningSpace:
							if l := line.String(); l != "" && !strings.HasSuffix(l, " ") {
								line.WriteByte(' ')
							}
						}
					}
				}
			case "Td", "TD":
				if ty, ok := number(len(operands) - 1); ok && ty != 0 {
					flushLine()
				} else if line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
					line.WriteByte(' ')
				}
			case "T*":
				flushLine()
			case "Tm":
				if y, ok := number(len(operands) - 1); ok {
					if haveY && y != lastY {
						flushLine()
					}
					lastY, haveY = y, true
				}
			case "BI":
				s.skipInlineImage()
			}
			operands = operands[:0]
		}
	}
}

type scanner struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(c)
}

func (s *scanner) next() token {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isWhitespace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.pos++
			return token{kind: tokString, text: decodeText(s.literal())}
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				return token{kind: tokOther, text: "<<"}
			}
			s.pos++
			return token{kind: tokString, text: decodeText(s.hex())}
		case c == '>':
			s.pos++
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
			return token{kind: tokOther, text: ">>"}
		case c == '[':
			s.pos++
			return token{kind: tokArrayStart}
		case c == ']':
			s.pos++
			return token{kind: tokArrayEnd}
		case c == '{' || c == '}' || c == ')':
			s.pos++
		case c == '/':
			start := s.pos
			s.pos++
			s.word()
			return token{kind: tokOther, text: string(s.data[start:s.pos])}
		default:
			start := s.pos
			if c == '\'' || c == '"' {
				s.pos++
			} else {
				s.word()
			}
			w := string(s.data[start:s.pos])
			if n, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, num: n}
			}
			return token{kind: tokOperator, text: w}
		}
	}
	return token{kind: tokEOF}
}

func (s *scanner) word() {
	for s.pos < len(s.data) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
}

// literal reads a parenthesised string body; the opening paren is consumed.
func (s *scanner) literal() []byte {
	var out []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if s.pos >= len(s.data) {
				return out
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						v = v*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a hex string body; the opening angle bracket is consumed.
func (s *scanner) hex() []byte {
	var digits []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		if _, ok := hexValue(c); ok {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, len(digits)/2)
	for i := range out {
		hi, _ := hexValue(digits[2*i])
		lo, _ := hexValue(digits[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage advances past the data of an inline image up to EI.
func (s *scanner) skipInlineImage() {
	for s.pos+2 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			isWhitespace(s.data[s.pos-1]) && isDelimiter(s.data[s.pos+2]) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// decodeText turns PDF string bytes into text. UTF-16BE strings carry a
// byte order mark; anything else is read as Latin-1.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}

	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
