package rplcore

import (
	"strings"

	"github.com/jcorbin/rplcore/internal/leb128"
)

// Symbol objects are interned by value, not by identity: two Symbols with
// the same name compare structurally equal, and no global intern table is
// kept. The payload is a LEB128 length prefix followed by the name's raw
// UTF-8 bytes.

func init() {
	register(TagSymbol, kindOps{
		name: "symbol",
		size: func(rt *Runtime, payload Ref) (uint, error) {
			buf := rt.buf.Bytes()
			if uint(payload) >= uint(len(buf)) {
				return 0, ErrType{Expected: "symbol", Got: "out of range"}
			}
			n, sz, ok := leb128.Decode(buf[payload:])
			if !ok {
				return 0, ErrType{Expected: "symbol", Got: "malformed length"}
			}
			return uint(sz) + uint(n), nil
		},
		parseAt: func(rt *Runtime, text string, pos int) (Ref, int, error) {
			end := pos
			for end < len(text) && !isSymbolDelimiter(text[end]) && !strings.HasPrefix(text[end:], "«") && !strings.HasPrefix(text[end:], "»") {
				end++
			}
			if end == pos {
				return 0, 0, nil
			}
			ref, err := rt.newSymbol(text[pos:end])
			if err != nil {
				return 0, end - pos, err
			}
			return ref, end - pos, nil
		},
		render: func(rt *Runtime, payload Ref, editing bool) (string, error) {
			name, err := symbolText(rt, symbolTagAddr(payload))
			if err != nil {
				return "", err
			}
			return string(name), nil
		},
		evaluate: func(rt *Runtime, obj Ref) error {
			name, err := symbolText(rt, obj)
			if err != nil {
				return err
			}
			return rt.evaluateSymbol(string(name))
		},
	})
}

// isSymbolDelimiter reports whether c ends a bare token: whitespace or one
// of the punctuation characters composite kinds use as their own
// delimiters.
func isSymbolDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '"':
		return true
	}
	return false
}

// symbolTagAddr converts a Symbol's payload offset back to its tag-start
// address (payload - 1) for symbolText. Callers can recompute it this way
// because the tag is always exactly one byte (TagSymbol's
// LEB128 varint encodes to a single byte for any small tag value).
func symbolTagAddr(payload Ref) Ref { return payload - 1 }

// symbolText decodes the name of the Symbol whose tag starts at addr.
func symbolText(rt *Runtime, addr Ref) ([]byte, error) {
	_, tag, payload, err := rt.kindAt(addr)
	if err != nil {
		return nil, err
	}
	if tag != TagSymbol {
		return nil, ErrType{Expected: "symbol", Got: tag.String()}
	}
	buf := rt.buf.Bytes()
	n, sz, ok := leb128.Decode(buf[payload:])
	if !ok {
		return nil, ErrType{Expected: "symbol", Got: "malformed length"}
	}
	start := uint(payload) + uint(sz)
	end := start + uint(n)
	if end > uint(len(buf)) {
		return nil, ErrType{Expected: "symbol", Got: "truncated name"}
	}
	return buf[start:end], nil
}

// newSymbol allocates a Symbol object holding name.
func (rt *Runtime) newSymbol(name string) (Ref, error) {
	var lenBuf [10]byte
	lenBytes := leb128.Encode(lenBuf[:0], uint64(len(name)))
	addr, payload, err := rt.allocate(TagSymbol, uint(len(lenBytes))+uint(len(name)))
	if err != nil {
		return 0, err
	}
	n := copy(payload, lenBytes)
	copy(payload[n:], name)
	return addr, nil
}

// evaluateSymbol performs name's RPL action: a native builtin if bound,
// else the bound Globals value's own evaluation (a Decimal128 or Symbol
// pushes itself; a Program runs its body), else ErrNotFound.
func (rt *Runtime) evaluateSymbol(name string) error {
	if fn, ok := rt.builtins[name]; ok {
		return fn(rt)
	}
	ref, err := rt.Recall(name)
	if err != nil {
		return err
	}
	tag, err := rt.TagOf(ref)
	if err != nil {
		return err
	}
	if tag == TagProgram {
		return rt.Evaluate(ref)
	}
	rt.Push(ref)
	return nil
}

