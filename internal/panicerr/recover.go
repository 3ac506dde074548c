// Package panicerr turns a recovered panic into a plain error, so that a
// single evaluation step can never take the whole runtime down with it.
//
// gothird's version of this package ran f in a goroutine so it could also
// catch runtime.Goexit; that requires the core to be safe to call from
// another goroutine, which the single-threaded arena is explicitly not
// (spec Non-goal: no multithreading). This version recovers in place with
// a plain defer instead.
package panicerr

// Recover runs f and converts any panic it raises into a non-nil error
// return instead of letting it propagate.
func Recover(name string, f func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = newPanicError(name, e)
		}
	}()
	return f()
}
