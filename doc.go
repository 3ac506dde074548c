/*
Package rplcore implements the core of an embedded RPL calculator runtime:
a tagged object heap with a compacting garbage collector, a polymorphic
object protocol dispatched on those tags, and a decimal128 numeric value
type built on top of it.

The runtime owns a single contiguous byte arena split into a Globals
region (named, pinned, append-only bindings) and a Temporaries region
(anonymous, GC-collected results of parsing and evaluation). The
evaluation stack and the safe-handle registry hold references into that
arena as plain offsets; every allocation may trigger a GC pass and so may
invalidate any offset not held on the stack or via a Guard.

Section 1: see runtime.go for the arena, and gc.go for the collector.

Section 2: see object.go for the tag/dispatch protocol that every object
kind (decimal.go, symbol.go, strobj.go, list.go, program.go) implements.

Section 3: see parser.go and api.go for the text-in, text-out embedding
surface (PushText, Eval, RenderTop, Store, Recall, ...).
*/
package rplcore
