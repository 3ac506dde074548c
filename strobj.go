package rplcore

import (
	"github.com/jcorbin/rplcore/internal/leb128"
	"github.com/jcorbin/rplcore/internal/runeio"
)

// String objects are double-quoted text with the usual backslash escapes
// (\" \\ \n \t), plus \c<NAME> and \c^X for inserting a control character
// by mnemonic or caret form (e.g. \c<ESC> or \c^[ for an escape byte). The
// payload is a LEB128 length prefix followed by the decoded (unescaped)
// UTF-8 bytes; escaping only matters at the text boundary, not in memory.

func init() {
	register(TagString, kindOps{
		name: "string",
		size: func(rt *Runtime, payload Ref) (uint, error) {
			buf := rt.buf.Bytes()
			if uint(payload) >= uint(len(buf)) {
				return 0, ErrType{Expected: "string", Got: "out of range"}
			}
			n, sz, ok := leb128.Decode(buf[payload:])
			if !ok {
				return 0, ErrType{Expected: "string", Got: "malformed length"}
			}
			return uint(sz) + uint(n), nil
		},
		parseAt: func(rt *Runtime, text string, pos int) (Ref, int, error) {
			if pos >= len(text) || text[pos] != '"' {
				return 0, 0, nil
			}
			var decoded []byte
			i := pos + 1
			for {
				if i >= len(text) {
					return 0, i - pos, ErrParse{Position: pos, Message: "unterminated string"}
				}
				c := text[i]
				if c == '"' {
					i++
					break
				}
				if c == '\\' && i+1 < len(text) {
					if text[i+1] == 'c' {
						r, consumed, err := scanControlEscape(text, i+2)
						if err != nil {
							return 0, i - pos, ErrParse{Position: i, Message: "invalid control escape: " + err.Error()}
						}
						decoded = append(decoded, string(r)...)
						i += 2 + consumed
						continue
					}
					switch text[i+1] {
					case '"':
						decoded = append(decoded, '"')
					case '\\':
						decoded = append(decoded, '\\')
					case 'n':
						decoded = append(decoded, '\n')
					case 't':
						decoded = append(decoded, '\t')
					default:
						decoded = append(decoded, '\\', text[i+1])
					}
					i += 2
					continue
				}
				decoded = append(decoded, c)
				i++
			}
			ref, err := rt.newString(decoded)
			if err != nil {
				return 0, i - pos, err
			}
			return ref, i - pos, nil
		},
		render: func(rt *Runtime, payload Ref, editing bool) (string, error) {
			raw, err := stringBytes(rt, payload)
			if err != nil {
				return "", err
			}
			if !editing {
				return string(raw), nil
			}
			return quoteString(raw), nil
		},
		evaluate: func(rt *Runtime, obj Ref) error {
			rt.Push(obj)
			return nil
		},
	})
}

func stringBytes(rt *Runtime, payload Ref) ([]byte, error) {
	buf := rt.buf.Bytes()
	n, sz, ok := leb128.Decode(buf[payload:])
	if !ok {
		return nil, ErrType{Expected: "string", Got: "malformed length"}
	}
	start := uint(payload) + uint(sz)
	end := start + uint(n)
	if end > uint(len(buf)) {
		return nil, ErrType{Expected: "string", Got: "truncated content"}
	}
	return buf[start:end], nil
}

// scanControlEscape parses the token following a "\c" string escape,
// either a bracketed mnemonic ("<ESC>") or a caret form ("^["), and
// returns the decoded rune and the number of source bytes it consumed
// (not counting the leading "\c").
func scanControlEscape(text string, i int) (rune, int, error) {
	switch {
	case i < len(text) && text[i] == '<':
		j := i + 1
		for j < len(text) && text[j] != '>' {
			j++
		}
		if j >= len(text) {
			return 0, 0, errUnterminatedControlEscape
		}
		token := text[i : j+1]
		r, err := runeio.UnquoteRune(token)
		if err != nil {
			return 0, 0, err
		}
		return r, j + 1 - i, nil
	case i+1 < len(text) && text[i] == '^':
		token := text[i : i+2]
		r, err := runeio.UnquoteRune(token)
		if err != nil {
			return 0, 0, err
		}
		return r, 2, nil
	default:
		return 0, 0, errUnterminatedControlEscape
	}
}

var errUnterminatedControlEscape = ErrParse{Message: "expected <NAME> or ^X after \\c"}

func quoteString(raw []byte) string {
	out := make([]byte, 0, len(raw)+2)
	out = append(out, '"')
	for _, c := range raw {
		switch c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			// Bytes 0x80 and up are parts of UTF-8 sequences, not C1
			// controls, and are copied through unescaped.
			if caret := runeio.CaretForm(rune(c)); c < 0x80 && caret != "" {
				out = append(out, '\\', 'c')
				out = append(out, caret...)
				continue
			}
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}

// newString allocates a String object holding content.
func (rt *Runtime) newString(content []byte) (Ref, error) {
	var lenBuf [10]byte
	lenBytes := leb128.Encode(lenBuf[:0], uint64(len(content)))
	addr, payload, err := rt.allocate(TagString, uint(len(lenBytes))+uint(len(content)))
	if err != nil {
		return 0, err
	}
	n := copy(payload, lenBytes)
	copy(payload[n:], content)
	return addr, nil
}
