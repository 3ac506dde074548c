package rplcore

import (
	"github.com/jcorbin/rplcore/internal/leb128"
	"github.com/jcorbin/rplcore/internal/mem"
)

// Runtime is a single, explicit instance of the arena, stack, globals
// table and safe-handle registry. It is not a package-level singleton: an
// embedder or a test harness may construct as many as it likes, each
// completely independent, per the "parameterize for testability" note
// this module carries forward from its dispatch-table ancestor.
type Runtime struct {
	buf mem.Buffer

	globalsEnd Ref // end of Globals, start of Temporaries
	tempEnd    Ref // end of Temporaries (the "free" boundary)
	stackBase  Ref // capacity bound for Globals+Temporaries; 0 == unbounded

	globalsLast Ref // most recently stored binding, threaded backward; NilRef if none

	stack       []Ref
	safeHandles []*Guard

	lastErr error

	logfn func(mess string, args ...interface{})
	tee   func(step string)

	display  DisplayMode
	builtins map[string]func(rt *Runtime) error
}

// New constructs a Runtime, applying opts in order.
func New(opts ...Option) *Runtime {
	rt := &Runtime{globalsLast: NilRef}
	rt.buf.ChunkSize = mem.DefaultChunkSize
	rt.builtins = make(map[string]func(rt *Runtime) error, len(builtinTable))
	for name, fn := range builtinTable {
		rt.builtins[name] = fn
	}
	for _, opt := range opts {
		opt.apply(rt)
	}
	return rt
}

// LastError returns the error recorded by the most recent failing
// operation, or nil.
func (rt *Runtime) LastError() error { return rt.lastErr }

func (rt *Runtime) fail(err error) error {
	rt.lastErr = err
	return err
}

func (rt *Runtime) logf(mess string, args ...interface{}) {
	if rt.logfn != nil {
		rt.logfn(mess, args...)
	}
}

// freeBytes reports how many more bytes may be allocated in Temporaries
// before hitting stackBase, or true unboundedness if stackBase is 0.
func (rt *Runtime) freeBytes() (uint, bool) {
	if rt.stackBase == 0 {
		return 0, true
	}
	if rt.tempEnd >= rt.stackBase {
		return 0, false
	}
	return uint(rt.stackBase - rt.tempEnd), false
}

// allocate reserves total bytes (tag + payload) at the top of
// Temporaries, writes the tag, and returns the object's address plus a
// slice over its payload for the caller's constructor to fill in. GC runs
// automatically if the request does not fit; if it still does not fit,
// ErrOutOfMemory is returned.
func (rt *Runtime) allocate(tag Tag, payloadSize uint) (Ref, []byte, error) {
	var tagBuf [10]byte
	tagBytes := writeTag(tagBuf[:0], tag)
	total := uint(len(tagBytes)) + payloadSize

	if free, unbounded := rt.freeBytes(); !unbounded && free < total {
		if _, err := rt.GC(); err != nil {
			return 0, nil, rt.fail(err)
		}
		if free, unbounded := rt.freeBytes(); !unbounded && free < total {
			return 0, nil, rt.fail(ErrOutOfMemory{})
		}
	}

	addr := rt.tempEnd
	dst, err := rt.buf.Slice(uint(addr), total)
	if err != nil {
		return 0, nil, rt.fail(ErrOutOfMemory{})
	}
	copy(dst, tagBytes)
	rt.tempEnd = addr + Ref(total)
	rt.logf("alloc %v @%v (%d bytes)", tag, addr, total)
	return addr, dst[len(tagBytes):], nil
}

// Push places obj on top of the evaluation stack.
func (rt *Runtime) Push(obj Ref) {
	rt.stack = append(rt.stack, obj)
}

// Pop removes and returns the top of the evaluation stack.
func (rt *Runtime) Pop() (Ref, error) {
	if len(rt.stack) == 0 {
		return 0, rt.fail(ErrStackUnderflow{})
	}
	i := len(rt.stack) - 1
	obj := rt.stack[i]
	rt.stack = rt.stack[:i]
	return obj, nil
}

// Peek returns the i-th entry from the top of the stack (0 is the top)
// without removing it.
func (rt *Runtime) Peek(i int) (Ref, error) {
	idx := len(rt.stack) - 1 - i
	if idx < 0 || idx >= len(rt.stack) {
		return 0, rt.fail(ErrStackUnderflow{})
	}
	return rt.stack[idx], nil
}

// Depth returns the number of entries on the evaluation stack.
func (rt *Runtime) Depth() int { return len(rt.stack) }

// Drop removes the top n entries from the stack. It is a no-op past an
// empty stack rather than an error, matching the host-facing drop(n) in
// the embedding API.
func (rt *Runtime) Drop(n int) {
	if n > len(rt.stack) {
		n = len(rt.stack)
	}
	rt.stack = rt.stack[:len(rt.stack)-n]
}

// Clear empties the evaluation stack.
func (rt *Runtime) Clear() { rt.stack = rt.stack[:0] }

// Guard is a scoped, safe handle: an arena reference kept correct across
// any allocation for as long as the Guard is held. Guards nest strictly
// LIFO; Release must be called in reverse order of Protect.
type Guard struct {
	rt  *Runtime
	ref Ref
}

// Ref returns the guarded reference, corrected for any relocation since
// Protect was called.
func (g *Guard) Ref() Ref { return g.ref }

// Release unregisters the guard. It panics if called out of LIFO order,
// since that indicates a scoping bug in the caller, not a runtime
// condition an embedder should be routing around.
func (g *Guard) Release() {
	handles := g.rt.safeHandles
	if len(handles) == 0 || handles[len(handles)-1] != g {
		panic("rplcore: Guard released out of LIFO order")
	}
	g.rt.safeHandles = handles[:len(handles)-1]
}

// Protect registers ref as a safe handle, protecting it (and keeping it
// correct) across allocations until the returned Guard is released.
func (rt *Runtime) Protect(ref Ref) *Guard {
	g := &Guard{rt: rt, ref: ref}
	rt.safeHandles = append(rt.safeHandles, g)
	return g
}

// storeBinding lays out one Store()d name/value pair in the Globals
// region: a backward "prev" link threading all bindings into a singly
// linked list (newest first), followed by the name's Symbol encoding and
// then the value's own tagged encoding. This mirrors gothird's dictionary
// (VM.last / compileHeader / lookup): redefining a name shadows rather
// than overwrites, so nothing already parsed against the old binding is
// invalidated by a later Store.
func (rt *Runtime) storeBinding(prev Ref, name string, value []byte) (Ref, error) {
	var prevBuf [10]byte
	prevBytes := leb128.Encode(prevBuf[:0], uint64(prev))

	var symTagBuf [10]byte
	symTag := writeTag(symTagBuf[:0], TagSymbol)
	var symLenBuf [10]byte
	symLen := leb128.Encode(symLenBuf[:0], uint64(len(name)))

	total := Ref(len(prevBytes) + len(symTag) + len(symLen) + len(name) + len(value))
	addr := rt.globalsEnd

	// Any live Temporary already occupies [globalsEnd, tempEnd); growing
	// Globals in place would silently overwrite it. Open a gap of exactly
	// total bytes first, sliding those temporaries (and every stack entry
	// and safe handle pointing into them) up out of the way, the same way
	// GC's slide moves them down when reclaiming space.
	if rt.tempEnd > addr {
		if err := rt.buf.Expand(uint(addr), uint(total), uint(rt.tempEnd)); err != nil {
			return 0, rt.fail(ErrOutOfMemory{})
		}
		for i, s := range rt.stack {
			if s >= addr {
				rt.stack[i] = s + total
			}
		}
		for _, g := range rt.safeHandles {
			if g.ref >= addr {
				g.ref += total
			}
		}
		rt.tempEnd += total
	} else if _, err := rt.buf.Slice(uint(addr), uint(total)); err != nil {
		return 0, rt.fail(ErrOutOfMemory{})
	}

	dst := rt.buf.Bytes()[addr : uint(addr)+uint(total)]
	n := 0
	n += copy(dst[n:], prevBytes)
	n += copy(dst[n:], symTag)
	n += copy(dst[n:], symLen)
	n += copy(dst[n:], name)
	n += copy(dst[n:], value)
	rt.globalsEnd = addr + total
	if rt.tempEnd < rt.globalsEnd {
		rt.tempEnd = rt.globalsEnd
	}
	return addr, nil
}

// decodeBinding reads the binding starting at addr, returning its prev
// link, the bound name, the start and end offsets of the value that
// follows the name, and the offset of the next binding (equal to the
// value's end).
func (rt *Runtime) decodeBinding(addr Ref) (prev Ref, name string, valueOff Ref, valueEnd Ref, next Ref, err error) {
	buf := rt.buf.Bytes()
	p, sz, ok := leb128.Decode(buf[addr:])
	if !ok {
		return 0, "", 0, 0, 0, ErrType{Expected: "binding", Got: "malformed prev link"}
	}
	prev = Ref(p)
	off := addr + Ref(sz)

	nameEnd, err := rt.extent(off)
	if err != nil {
		return 0, "", 0, 0, 0, err
	}
	nameBytes, err := symbolText(rt, off)
	if err != nil {
		return 0, "", 0, 0, 0, err
	}

	valueOff = nameEnd
	valueEnd, err = rt.extent(valueOff)
	if err != nil {
		return 0, "", 0, 0, 0, err
	}
	return prev, string(nameBytes), valueOff, valueEnd, valueEnd, nil
}

// Store binds name to a copy of value in Globals, shadowing any prior
// binding of the same name.
func (rt *Runtime) Store(name string, value Ref) error {
	guard := rt.Protect(value)
	defer guard.Release()

	valueSize, err := rt.Size(guard.Ref())
	if err != nil {
		return rt.fail(err)
	}
	valueBytes := make([]byte, valueSize)
	copy(valueBytes, rt.buf.Bytes()[guard.Ref():uint(guard.Ref())+valueSize])

	addr, err := rt.storeBinding(rt.globalsLast, name, valueBytes)
	if err != nil {
		return err
	}
	rt.globalsLast = addr
	return nil
}

// Recall looks up name in Globals, returning a reference to its bound
// value, or ErrNotFound.
func (rt *Runtime) Recall(name string) (Ref, error) {
	for addr := rt.globalsLast; addr != NilRef; {
		prev, boundName, valueOff, _, _, err := rt.decodeBinding(addr)
		if err != nil {
			return 0, rt.fail(err)
		}
		if boundName == name {
			return valueOff, nil
		}
		addr = prev
	}
	return 0, rt.fail(ErrNotFound{Name: name})
}
