package rplcore

// SaveGlobals serializes the entire Globals region as a flat byte blob:
// a 4-byte little-endian length prefix followed by the region's raw
// bytes, copied verbatim. Because Globals objects are never moved once
// written, the region is already exactly the self-describing binding
// stream LoadGlobals needs to reconstruct globalsLast from.
func (rt *Runtime) SaveGlobals() ([]byte, error) {
	n := uint(rt.globalsEnd)
	raw, err := rt.buf.Load(0, n)
	if err != nil {
		return nil, rt.fail(err)
	}
	out := make([]byte, 4+len(raw))
	out[0] = byte(n)
	out[1] = byte(n >> 8)
	out[2] = byte(n >> 16)
	out[3] = byte(n >> 24)
	copy(out[4:], raw)
	return out, nil
}

// LoadGlobals replaces the Runtime's Globals region with blob, as
// produced by SaveGlobals. It must be called on a freshly constructed
// Runtime: Temporaries and the evaluation stack are not part of the
// blob and are reset.
func (rt *Runtime) LoadGlobals(blob []byte) error {
	if len(blob) < 4 {
		return rt.fail(ErrType{Expected: "globals blob", Got: "truncated header"})
	}
	n := uint(blob[0]) | uint(blob[1])<<8 | uint(blob[2])<<16 | uint(blob[3])<<24
	if uint(len(blob)) < 4+n {
		return rt.fail(ErrType{Expected: "globals blob", Got: "truncated body"})
	}
	body := blob[4 : 4+n]

	if err := rt.buf.Store(0, body); err != nil {
		return rt.fail(err)
	}
	rt.globalsEnd = Ref(n)
	rt.tempEnd = Ref(n)
	rt.stack = rt.stack[:0]
	rt.safeHandles = rt.safeHandles[:0]

	rt.globalsLast = NilRef
	for addr := Ref(0); addr < rt.globalsEnd; {
		_, _, _, _, next, err := rt.decodeBinding(addr)
		if err != nil {
			return rt.fail(err)
		}
		rt.globalsLast = addr
		addr = next
	}
	return nil
}
