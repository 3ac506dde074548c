package rplcore

// errEndOfInput is a sentinel returned by parseOneObject when pos has
// reached the end of text with nothing left to parse. It is never
// surfaced to a host caller: PushText turns it into an "empty input"
// parse error, and parseComposite checks for the end of text itself
// before calling parseOneObject, so it never receives one.
type errEndOfInput struct{}

func (errEndOfInput) Error() string { return "end of input" }

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
			continue
		}
		break
	}
	return pos
}

// parseOneObject tries every registered kind at pos, in parseOrder, after
// skipping leading whitespace. It is the single recursive entry point
// every composite kind's own parseAt uses for its children, and PushText
// uses for the single top-level object it parses per call.
func (rt *Runtime) parseOneObject(text string, pos int) (obj Ref, next int, err error) {
	pos = skipSpace(text, pos)
	if pos >= len(text) {
		return 0, pos, errEndOfInput{}
	}
	for _, tg := range parseOrder {
		k := kinds[tg]
		ref, consumed, perr := k.parseAt(rt, text, pos)
		if consumed == 0 && perr == nil {
			continue
		}
		if perr != nil {
			return 0, pos + consumed, perr
		}
		return ref, pos + consumed, nil
	}
	return 0, pos, ErrParse{Position: pos, Message: "unrecognized token"}
}

// PushText parses exactly one object from text and pushes it onto the
// evaluation stack. Leading and trailing whitespace is ignored; any other
// trailing content after the one object is a parse error, since each call
// parses a single token or bracketed structure, matching the one-object-
// per-call shape of every worked example in the host API contract.
func (rt *Runtime) PushText(text string) error {
	obj, next, err := rt.parseOneObject(text, 0)
	if err != nil {
		if _, empty := err.(errEndOfInput); empty {
			return rt.fail(ErrParse{Position: 0, Message: "empty input"})
		}
		return rt.fail(err)
	}
	if rest := skipSpace(text, next); rest != len(text) {
		return rt.fail(ErrParse{Position: rest, Message: "unexpected trailing input"})
	}
	rt.Push(obj)
	return nil
}
