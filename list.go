package rplcore

import (
	"strings"

	"github.com/jcorbin/rplcore/internal/leb128"
)

// List objects are ordered, heterogeneous sequences written as
// "{ a b c }". The payload is a LEB128 element count followed by the
// full tagged encoding of each element, back to back; there is no
// separate length-of-content prefix, since each element already carries
// its own extent.
//
// Lists are data: evaluating one pushes it back onto the stack, the same
// as a number or string literal.

func init() {
	register(TagList, kindOps{
		name: "list",
		size: func(rt *Runtime, payload Ref) (uint, error) {
			return compositeSize(rt, payload)
		},
		parseAt: func(rt *Runtime, text string, pos int) (Ref, int, error) {
			return rt.parseComposite(text, pos, "{", "}", TagList)
		},
		render: func(rt *Runtime, payload Ref, editing bool) (string, error) {
			return renderComposite(rt, payload, editing, "{ ", " }")
		},
		evaluate: func(rt *Runtime, obj Ref) error {
			rt.Push(obj)
			return nil
		},
	})
}

// compositeSize decodes a List/Program payload's element count and walks
// each child's own extent to find the end of the whole object.
func compositeSize(rt *Runtime, payload Ref) (uint, error) {
	buf := rt.buf.Bytes()
	if uint(payload) >= uint(len(buf)) {
		return 0, ErrType{Expected: "composite", Got: "out of range"}
	}
	count, sz, ok := leb128.Decode(buf[payload:])
	if !ok {
		return 0, ErrType{Expected: "composite", Got: "malformed count"}
	}
	addr := payload + Ref(sz)
	for i := uint64(0); i < count; i++ {
		next, err := rt.extent(addr)
		if err != nil {
			return 0, err
		}
		addr = next
	}
	return uint(addr - payload), nil
}

// compositeElements returns the tag addresses of every child of a
// List/Program payload, in order.
func compositeElements(rt *Runtime, payload Ref) ([]Ref, error) {
	buf := rt.buf.Bytes()
	count, sz, ok := leb128.Decode(buf[payload:])
	if !ok {
		return nil, ErrType{Expected: "composite", Got: "malformed count"}
	}
	addr := payload + Ref(sz)
	out := make([]Ref, 0, count)
	for i := uint64(0); i < count; i++ {
		out = append(out, addr)
		next, err := rt.extent(addr)
		if err != nil {
			return nil, err
		}
		addr = next
	}
	return out, nil
}

func renderComposite(rt *Runtime, payload Ref, editing bool, open, close string) (string, error) {
	elems, err := compositeElements(rt, payload)
	if err != nil {
		return "", err
	}
	out := open
	for i, e := range elems {
		if i > 0 {
			out += " "
		}
		s, err := rt.Render(e, editing)
		if err != nil {
			return "", err
		}
		out += s
	}
	return out + close, nil
}

// parseComposite parses a bracketed sequence of objects beginning with
// open at pos. Each element is parsed recursively via parseOneObject
// (so lists may nest and may contain any other kind), with a Guard held
// on every partially-parsed element so that GC triggered by a later
// sibling's allocation cannot invalidate it.
func (rt *Runtime) parseComposite(text string, pos int, open, close string, tag Tag) (Ref, int, error) {
	if !strings.HasPrefix(text[pos:], open) {
		return 0, 0, nil
	}
	i := pos + len(open)
	var guards []*Guard
	releaseAll := func() {
		for j := len(guards) - 1; j >= 0; j-- {
			guards[j].Release()
		}
	}

	for {
		i = skipSpace(text, i)
		if strings.HasPrefix(text[i:], close) {
			i += len(close)
			break
		}
		if i >= len(text) {
			releaseAll()
			return 0, i - pos, ErrParse{Position: pos, Message: "unterminated composite"}
		}
		obj, next, err := rt.parseOneObject(text, i)
		if err != nil {
			releaseAll()
			return 0, next - pos, err
		}
		guards = append(guards, rt.Protect(obj))
		i = next
	}

	var countBuf [10]byte
	countBytes := leb128.Encode(countBuf[:0], uint64(len(guards)))
	total := uint(len(countBytes))
	sizes := make([]uint, len(guards))
	for gi, g := range guards {
		sz, err := rt.Size(g.Ref())
		if err != nil {
			releaseAll()
			return 0, i - pos, err
		}
		sizes[gi] = sz
		total += sz
	}

	addr, dst, err := rt.allocate(tag, total)
	if err != nil {
		releaseAll()
		return 0, i - pos, err
	}
	n := copy(dst, countBytes)
	buf := rt.buf.Bytes()
	for gi, g := range guards {
		src := buf[g.Ref() : uint(g.Ref())+sizes[gi]]
		n += copy(dst[n:], src)
	}
	releaseAll()
	return addr, i - pos, nil
}
