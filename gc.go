package rplcore

// GC runs a single-pass, mark-in-place, slide-compact collection over the
// Temporaries region. Globals are assumed pinned and are not scanned at
// all, neither as collection candidates nor as roots: a bound value holds
// no live reference back into Temporaries (Store always copies, see
// Runtime.Store), so the stack and the safe handles are the only roots.
//
// The scan direction is fixed low-to-high starting at the Globals/
// Temporaries boundary. When an unreachable object is found, everything
// above it slides down by its size and every stack entry and safe handle
// at or above it is adjusted to match; the scan then re-examines the
// address the next surviving object was slid into, rather than skipping
// past it, since that address now holds a different object than it did
// a moment ago.
func (rt *Runtime) GC() (uint, error) {
	var recycled uint

	obj := rt.globalsEnd
	for obj < rt.tempEnd {
		next, err := rt.extent(obj)
		if err != nil {
			return recycled, err
		}

		if rt.reachable(obj, next) {
			obj = next
			continue
		}

		sz := next - obj
		rt.slide(obj, sz)
		recycled += uint(sz)
		// obj is unchanged: the survivor that used to start at `next` now
		// starts at `obj`, and must be re-examined in its own right.
	}

	rt.logf("gc recycled %d bytes", recycled)
	return recycled, nil
}

// reachable reports whether any stack entry or safe handle points within
// [obj, next).
func (rt *Runtime) reachable(obj, next Ref) bool {
	for _, s := range rt.stack {
		if s >= obj && s < next {
			return true
		}
	}
	for _, g := range rt.safeHandles {
		if g.ref >= obj && g.ref < next {
			return true
		}
	}
	return false
}

// slide removes the sz bytes at [obj, obj+sz) from Temporaries, shifting
// everything above it down by sz, and corrects every stack entry and
// safe handle that pointed at or above obj to match.
func (rt *Runtime) slide(obj, sz Ref) {
	for i, s := range rt.stack {
		if s >= obj {
			rt.stack[i] = s - sz
		}
	}
	for _, g := range rt.safeHandles {
		if g.ref >= obj {
			g.ref -= sz
		}
	}
	rt.buf.Compact(uint(obj), uint(sz), uint(rt.tempEnd))
	rt.tempEnd -= sz
}
