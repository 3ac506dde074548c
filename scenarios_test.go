package rplcore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/rplcore"
)

// TestPushAndAdd covers the simplest end-to-end scenario: two literals
// pushed one at a time, then added via a builtin symbol.
func TestPushAndAdd(t *testing.T) {
	rt := rplcore.New()
	require.NoError(t, rt.PushText("1.5"))
	require.NoError(t, rt.PushText("2.25"))
	require.NoError(t, rt.PushText("+"))
	require.NoError(t, rt.Eval())

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "3.75", s)
	assert.Equal(t, 1, rt.Depth())
}

// TestGCPreservesStackAcrossManyAllocations exercises the collector under
// the host API alone: enough churn to force several GC passes, with the
// only long-lived reference being the evaluation stack.
func TestGCPreservesStackAcrossManyAllocations(t *testing.T) {
	rt := rplcore.New(rplcore.WithCapacity(4096), rplcore.WithChunkSize(128))
	require.NoError(t, rt.PushText("123"))

	for i := 0; i < 200; i++ {
		require.NoError(t, rt.PushText("1"))
		require.NoError(t, rt.PushText("+"))
		require.NoError(t, rt.Eval())
		require.NoError(t, rt.PushText("1"))
		require.NoError(t, rt.PushText("-"))
		require.NoError(t, rt.Eval())
	}

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "123", s)
}

// TestSymbolBinding covers Store/Recall through the symbol evaluation
// path: storing a value under a name, then pushing and evaluating the
// bare name symbol.
func TestSymbolBinding(t *testing.T) {
	rt := rplcore.New()
	v, err := rt.NewDecimalFromInt64(42)
	require.NoError(t, err)
	require.NoError(t, rt.Store("x", v))

	require.NoError(t, rt.PushText("x"))
	require.NoError(t, rt.Eval())

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "42", s)
}

// TestParseErrorPosition covers a malformed numeric literal: the error
// must carry the position of the offending second '.'.
func TestParseErrorPosition(t *testing.T) {
	rt := rplcore.New()
	err := rt.PushText("1.2.3")
	require.Error(t, err)
	var perr rplcore.ErrParse
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Position)
}

// TestDivisionByZeroYieldsInfinity covers the end-to-end division path:
// unlike Mod/Rem, dividing by zero is not an error.
func TestDivisionByZeroYieldsInfinity(t *testing.T) {
	rt := rplcore.New()
	require.NoError(t, rt.PushText("5"))
	require.NoError(t, rt.PushText("0"))
	require.NoError(t, rt.PushText("/"))
	require.NoError(t, rt.Eval())

	top, err := rt.Peek(0)
	require.NoError(t, err)
	class, err := rt.Fpclass(top)
	require.NoError(t, err)
	assert.Equal(t, rplcore.PositiveInfinity, class)

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "∞", s)
}

// TestStackUnderflow covers popping past an empty stack.
func TestStackUnderflow(t *testing.T) {
	rt := rplcore.New()
	require.NoError(t, rt.PushText("+"))
	err := rt.Eval()
	assert.Equal(t, rplcore.ErrStackUnderflow{}, err)
}

// TestFailedEvalRollsBackStack covers spec's rollback requirement: a
// failed evaluation must restore the stack exactly as it was at entry,
// not leave behind whatever operands it managed to pop before failing.
func TestFailedEvalRollsBackStack(t *testing.T) {
	rt := rplcore.New()
	require.NoError(t, rt.PushText("5"))
	require.NoError(t, rt.PushText("+"))

	err := rt.Eval()
	assert.Equal(t, rplcore.ErrStackUnderflow{}, err)
	assert.Equal(t, 1, rt.Depth())

	top, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "5", top)
}

// TestFailedProgramRollsBackPartialSteps covers the deeper case: a
// Program that runs some steps successfully (overwriting entry-time
// stack slots with intermediate results) before a later step fails must
// still restore the stack to its pre-run state, not the partial result.
func TestFailedProgramRollsBackPartialSteps(t *testing.T) {
	rt := rplcore.New()
	require.NoError(t, rt.PushText("5"))
	require.NoError(t, rt.PushText("3"))
	require.NoError(t, rt.PushText("« + nosuchname »"))

	err := rt.Eval()
	require.Error(t, err)
	var notFound rplcore.ErrNotFound
	require.ErrorAs(t, err, &notFound)

	assert.Equal(t, 2, rt.Depth())
	top, err := rt.RenderAt(0)
	require.NoError(t, err)
	assert.Equal(t, "3", top)
	next, err := rt.RenderAt(1)
	require.NoError(t, err)
	assert.Equal(t, "5", next)
}
