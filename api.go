package rplcore

import "github.com/jcorbin/rplcore/internal/panicerr"

// Eval pops the top of the evaluation stack and performs its RPL
// evaluation action (for most kinds that is "push back unchanged"; for a
// Symbol it is a lookup-and-dispatch; for a Program it is running the
// body). A single step is wrapped in panic recovery: an internal
// invariant violation surfaces as an error rather than taking down the
// embedder, per this runtime's single-threaded fault-isolation contract.
func (rt *Runtime) Eval() error {
	obj, err := rt.Pop()
	if err != nil {
		return err
	}
	if rt.tee != nil {
		if s, rerr := rt.Render(obj, true); rerr == nil {
			rt.tee(s)
		}
	}
	// Snapshot the stack at evaluation entry (obj already popped): a
	// failed evaluation may have left partial side effects behind, e.g.
	// operands popped with no result pushed, or a Program that ran some
	// but not all of its steps before one failed, possibly already
	// overwriting entry-time slots with intermediate results. A bare
	// length restore isn't enough to undo that, and a raw content copy
	// isn't either: the failed attempt may have allocated and triggered
	// a GC that relocated an entry-time object nothing but this snapshot
	// still refers to. Guard each entry for the duration instead, so it
	// stays correct no matter what the failed attempt allocated, then
	// restore from the guards' corrected values.
	entries := rt.stack
	guards := make([]*Guard, len(entries))
	for i, ref := range entries {
		guards[i] = rt.Protect(ref)
	}
	err = panicerr.Recover("eval", func() error {
		return rt.Evaluate(obj)
	})
	if err != nil {
		restored := make([]Ref, len(guards))
		for i, g := range guards {
			restored[i] = g.Ref()
		}
		rt.stack = restored
	}
	for i := len(guards) - 1; i >= 0; i-- {
		guards[i].Release()
	}
	if err != nil {
		return rt.fail(err)
	}
	return nil
}

// RenderTop renders the top of the stack in display mode without
// removing it, the usual way a host refreshes a calculator's stack
// display after every operation.
func (rt *Runtime) RenderTop() (string, error) {
	obj, err := rt.Peek(0)
	if err != nil {
		return "", err
	}
	return rt.Render(obj, false)
}

// RenderAt renders the i-th stack entry from the top (0 is the top) in
// display mode.
func (rt *Runtime) RenderAt(i int) (string, error) {
	obj, err := rt.Peek(i)
	if err != nil {
		return "", err
	}
	return rt.Render(obj, false)
}
