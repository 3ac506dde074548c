package rplcore

// Option configures a Runtime at construction time. There is no package-
// level default configuration beyond mem.DefaultChunkSize: every other
// knob is opt-in.
type Option interface {
	apply(rt *Runtime)
}

type optionFunc func(rt *Runtime)

func (f optionFunc) apply(rt *Runtime) { f(rt) }

// WithCapacity bounds the combined size of Globals and Temporaries to n
// bytes, after which allocation fails with ErrOutOfMemory rather than
// growing further (GC still runs first). Zero, the default, means
// unbounded growth.
func WithCapacity(n uint) Option {
	return optionFunc(func(rt *Runtime) {
		rt.stackBase = Ref(n)
	})
}

// WithChunkSize overrides the granularity the arena grows by.
func WithChunkSize(n uint) Option {
	return optionFunc(func(rt *Runtime) {
		rt.buf.ChunkSize = n
	})
}

// WithLogf installs a sink for the runtime's internal trace logging
// (allocation and GC messages; evaluation steps are not logged). The
// default is silence. cmd/rplsh's -trace flag installs this.
func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return optionFunc(func(rt *Runtime) {
		rt.logfn = logfn
	})
}

// WithTee installs a callback invoked with the editing-mode rendering of
// each object Eval pops and evaluates, independent of WithLogf's free-form
// trace. Intended for an embedder's single-step debugger.
func WithTee(tee func(step string)) Option {
	return optionFunc(func(rt *Runtime) {
		rt.tee = tee
	})
}

// WithDisplayMode sets the non-editing number rendering mode (fixed or
// scientific notation; there is no engineering notation) used by
// RenderTop and Render.
func WithDisplayMode(mode DisplayMode) Option {
	return optionFunc(func(rt *Runtime) {
		rt.display = mode
	})
}

