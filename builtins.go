package rplcore

// builtinTable holds the native (non-arena) bindings every Runtime starts
// with: the arithmetic and stack-storage words a bare symbol resolves to
// before ever consulting Globals. These are not Program objects in the
// arena; they are plain Go closures, so that exercising them costs no
// allocation and needs no bootstrap sequence at New() time.
var builtinTable = map[string]func(rt *Runtime) error{
	"+":   builtinBinary(decimalAdd),
	"-":   builtinBinary(decimalSub),
	"*":   builtinBinary(decimalMul),
	"/":   builtinBinary(decimalDiv),
	"MOD": builtinBinary(decimalMod),
	"RMD": builtinBinary(decimalRem),
	"NEG": builtinUnary(func(a bits128) (bits128, error) { return negate(a), nil }),
	"ABS": builtinUnary(func(a bits128) (bits128, error) { return absolute(a), nil }),
	"STO": builtinSTO,
	"RCL": builtinRCL,
}

func (rt *Runtime) popDecimal() (bits128, error) {
	ref, err := rt.Pop()
	if err != nil {
		return bits128{}, err
	}
	tag, err := rt.TagOf(ref)
	if err != nil {
		return bits128{}, rt.fail(err)
	}
	if tag != TagDecimal128 {
		return bits128{}, rt.fail(ErrType{Expected: "decimal128", Got: tag.String()})
	}
	_, _, payload, err := rt.kindAt(ref)
	if err != nil {
		return bits128{}, rt.fail(err)
	}
	return rt.decimalAt(payload)
}

func (rt *Runtime) popSymbolName() (string, error) {
	ref, err := rt.Pop()
	if err != nil {
		return "", err
	}
	tag, err := rt.TagOf(ref)
	if err != nil {
		return "", rt.fail(err)
	}
	if tag != TagSymbol {
		return "", rt.fail(ErrType{Expected: "symbol", Got: tag.String()})
	}
	name, err := symbolText(rt, ref)
	if err != nil {
		return "", rt.fail(err)
	}
	return string(name), nil
}

func builtinBinary(op func(a, b bits128) (bits128, error)) func(rt *Runtime) error {
	return func(rt *Runtime) error {
		b, err := rt.popDecimal()
		if err != nil {
			return err
		}
		a, err := rt.popDecimal()
		if err != nil {
			return err
		}
		result, err := op(a, b)
		if err != nil {
			return rt.fail(err)
		}
		ref, err := rt.newDecimal128(result)
		if err != nil {
			return err
		}
		rt.Push(ref)
		return nil
	}
}

func builtinUnary(op func(a bits128) (bits128, error)) func(rt *Runtime) error {
	return func(rt *Runtime) error {
		a, err := rt.popDecimal()
		if err != nil {
			return err
		}
		result, err := op(a)
		if err != nil {
			return rt.fail(err)
		}
		ref, err := rt.newDecimal128(result)
		if err != nil {
			return err
		}
		rt.Push(ref)
		return nil
	}
}

// builtinSTO implements "value 'name' STO": the name is on top, the value
// underneath.
func builtinSTO(rt *Runtime) error {
	name, err := rt.popSymbolName()
	if err != nil {
		return err
	}
	value, err := rt.Pop()
	if err != nil {
		return err
	}
	return rt.Store(name, value)
}

// builtinRCL implements "'name' RCL": pops a name and pushes its bound
// value.
func builtinRCL(rt *Runtime) error {
	name, err := rt.popSymbolName()
	if err != nil {
		return err
	}
	ref, err := rt.Recall(name)
	if err != nil {
		return err
	}
	rt.Push(ref)
	return nil
}
