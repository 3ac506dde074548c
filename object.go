package rplcore

import "github.com/jcorbin/rplcore/internal/leb128"

// Ref is an offset into the arena, identifying an object by the address of
// its leading tag byte. It is invalidated by any allocation unless it is
// on the evaluation stack or held by a Guard.
type Ref uint32

// NilRef is the not-a-reference value, returned by lookups that find
// nothing and never a valid object address.
const NilRef Ref = ^Ref(0)

// Tag identifies an object kind. It is encoded as a LEB128 varint at the
// head of every arena object; the payload that follows is opaque to the
// collector, which learns its extent from the kind's size operation.
type Tag uint64

// The closed set of object kinds this runtime knows about. Parsing does
// not follow this declaration order but parseOrder below (used by
// parseOneObject): literal numerics first, then quoted strings, then
// composite structures, then symbols as the identifier-shaped catch-all.
const (
	TagInvalid Tag = iota
	TagDecimal128
	TagSymbol
	TagString
	TagList
	TagProgram

	tagMax
)

func (t Tag) String() string {
	if k := kinds[t]; k.name != "" {
		return k.name
	}
	return "invalid"
}

// kindOps is the per-tag vtable: a table of function pointers keyed by
// Tag, standing in for the macro-generated dispatch hooks of the object
// this runtime is modeled after. There is no interface value in the hot
// path; dispatch is a single array index into kinds.
type kindOps struct {
	name string

	// size returns the payload length (excluding the tag) of the object
	// whose payload begins at payloadOff.
	size func(rt *Runtime, payloadOff Ref) (uint, error)

	// parseAt attempts to parse text[pos:] as this kind. consumed==0
	// means "skip, try the next kind"; consumed>0 with a non-nil err
	// means the kind recognized its lead-in and then rejected the
	// input (a hard parse failure, not a fallthrough).
	parseAt func(rt *Runtime, text string, pos int) (obj Ref, consumed int, err error)

	// render produces the textual form of the object whose payload
	// begins at the given offset.
	render func(rt *Runtime, obj Ref, editing bool) (string, error)

	// evaluate performs the object's RPL action. Unlike size/render, it is
	// given the object's own tag address rather than its payload offset,
	// since self-evaluating kinds (numbers, strings, lists) need it to
	// push themselves back onto the stack.
	evaluate func(rt *Runtime, obj Ref) error
}

var kinds [tagMax]kindOps

// parseOrder is the fixed priority order parsing tries kinds in.
var parseOrder = [...]Tag{TagDecimal128, TagString, TagList, TagProgram, TagSymbol}

func register(t Tag, ops kindOps) {
	kinds[t] = ops
}

// tagAt decodes the LEB128 tag at addr, returning the tag, the offset of
// its payload (addr plus the tag's own encoded length), and an error if
// the bytes there are not a well-formed tag.
func (rt *Runtime) tagAt(addr Ref) (Tag, Ref, error) {
	buf := rt.buf.Bytes()
	if uint(addr) >= uint(len(buf)) {
		return TagInvalid, 0, ErrType{Expected: "tag", Got: "out of range"}
	}
	n, size, ok := leb128.Decode(buf[addr:])
	if !ok {
		return TagInvalid, 0, ErrType{Expected: "tag", Got: "malformed leb128"}
	}
	tag := Tag(n)
	if tag == TagInvalid || tag >= tagMax {
		return TagInvalid, 0, ErrType{Expected: "tag", Got: "unknown tag"}
	}
	return tag, addr + Ref(size), nil
}

// kindAt is a convenience wrapper returning the descriptor for the object
// at addr along with the tag and payload offset already decoded.
func (rt *Runtime) kindAt(addr Ref) (kindOps, Tag, Ref, error) {
	tag, payload, err := rt.tagAt(addr)
	if err != nil {
		return kindOps{}, TagInvalid, 0, err
	}
	return kinds[tag], tag, payload, nil
}

// extent returns the offset just past obj: the address the next object,
// if any, begins at.
func (rt *Runtime) extent(obj Ref) (Ref, error) {
	k, _, payload, err := rt.kindAt(obj)
	if err != nil {
		return 0, err
	}
	sz, err := k.size(rt, payload)
	if err != nil {
		return 0, err
	}
	return payload + Ref(sz), nil
}

// Size returns the total byte extent of obj, tag included, matching the
// testable property size(o) == required_memory(tag(o), fields(o)).
func (rt *Runtime) Size(obj Ref) (uint, error) {
	next, err := rt.extent(obj)
	if err != nil {
		return 0, err
	}
	return uint(next - obj), nil
}

// Evaluate performs obj's RPL evaluation action.
func (rt *Runtime) Evaluate(obj Ref) error {
	k, _, _, err := rt.kindAt(obj)
	if err != nil {
		return err
	}
	return k.evaluate(rt, obj)
}

// Render produces the textual form of obj.
func (rt *Runtime) Render(obj Ref, editing bool) (string, error) {
	k, _, payload, err := rt.kindAt(obj)
	if err != nil {
		return "", err
	}
	return k.render(rt, payload, editing)
}

// TagOf reports the kind of obj.
func (rt *Runtime) TagOf(obj Ref) (Tag, error) {
	tag, _, err := rt.tagAt(obj)
	return tag, err
}

func writeTag(buf []byte, t Tag) []byte {
	return leb128.Encode(buf, uint64(t))
}
