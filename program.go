package rplcore

// Program objects are bracketed "« a b c »" sequences that, unlike
// Lists, run their contents in order when evaluated rather than pushing
// themselves. A Symbol bound to a Program executes it in place of
// pushing the binding, giving user-defined names procedure semantics;
// a bare Program literal does the same the moment something evaluates it
// directly (e.g. the host API's Eval of the top of stack).

func init() {
	register(TagProgram, kindOps{
		name: "program",
		size: func(rt *Runtime, payload Ref) (uint, error) {
			return compositeSize(rt, payload)
		},
		parseAt: func(rt *Runtime, text string, pos int) (Ref, int, error) {
			return rt.parseComposite(text, pos, "«", "»", TagProgram)
		},
		render: func(rt *Runtime, payload Ref, editing bool) (string, error) {
			return renderComposite(rt, payload, editing, "« ", " »")
		},
		evaluate: func(rt *Runtime, obj Ref) error {
			// obj (and every element address derived from it) is a
			// Temporary offset: evaluating one element may allocate and
			// trigger a GC that slides the program itself, which would
			// invalidate every remaining element address taken up
			// front. Guard the program for the whole run and re-derive
			// its elements from the guard's (possibly corrected)
			// address before each step.
			guard := rt.Protect(obj)
			defer guard.Release()
			for i := 0; ; i++ {
				_, _, payload, err := rt.kindAt(guard.Ref())
				if err != nil {
					return err
				}
				elems, err := compositeElements(rt, payload)
				if err != nil {
					return err
				}
				if i >= len(elems) {
					return nil
				}
				if err := rt.Evaluate(elems[i]); err != nil {
					return err
				}
			}
		},
	})
}
