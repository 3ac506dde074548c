package rplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolParseAndRender(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText("foo"))
	top, err := rt.Peek(0)
	require.NoError(t, err)
	tag, err := rt.TagOf(top)
	require.NoError(t, err)
	assert.Equal(t, TagSymbol, tag)

	s, err := rt.Render(top, true)
	require.NoError(t, err)
	assert.Equal(t, "foo", s)
}

func TestStringParseEscapesAndRenders(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText(`"hi\nthere"`))
	top, err := rt.Peek(0)
	require.NoError(t, err)
	tag, err := rt.TagOf(top)
	require.NoError(t, err)
	assert.Equal(t, TagString, tag)

	display, err := rt.Render(top, false)
	require.NoError(t, err)
	assert.Equal(t, "hi\nthere", display)

	editing, err := rt.Render(top, true)
	require.NoError(t, err)
	assert.Equal(t, `"hi\nthere"`, editing)
}

func TestStringControlEscapes(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText(`"bell\c<BEL>end"`))
	display, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "bell\aend", display)

	rt2 := New()
	require.NoError(t, rt2.PushText(`"esc\c^[end"`))
	display2, err := rt2.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "esc\x1bend", display2)
}

func TestStringControlByteRendersWithCaretEscape(t *testing.T) {
	rt := New()
	ref, err := rt.newString([]byte("a\x07b"))
	require.NoError(t, err)
	editing, err := rt.Render(ref, true)
	require.NoError(t, err)
	assert.Equal(t, `"a\c^Gb"`, editing)
}

func TestStringUnterminatedIsParseError(t *testing.T) {
	rt := New()
	err := rt.PushText(`"never closes`)
	require.Error(t, err)
	var perr ErrParse
	require.ErrorAs(t, err, &perr)
}

func TestListParseAndRenderNested(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText("{ 1 2 { 3 4 } }"))
	top, err := rt.Peek(0)
	require.NoError(t, err)
	tag, err := rt.TagOf(top)
	require.NoError(t, err)
	assert.Equal(t, TagList, tag)

	s, err := rt.Render(top, true)
	require.NoError(t, err)
	assert.Equal(t, "{ 1 2 { 3 4 } }", s)
}

func TestListEvaluatesToItself(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText("{ 1 2 }"))
	require.NoError(t, rt.Eval())
	assert.Equal(t, 1, rt.Depth())
}

func TestProgramExecutesOnEval(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText("« 1 2 + »"))
	require.NoError(t, rt.Eval())

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "3", s)
}

func TestProgramBoundToSymbolExecutesOnRecallEval(t *testing.T) {
	rt := New()
	require.NoError(t, rt.PushText("« 1 2 + »"))
	prog, err := rt.Pop()
	require.NoError(t, err)
	require.NoError(t, rt.Store("addone", prog))

	require.NoError(t, rt.PushText("addone"))
	require.NoError(t, rt.Eval())

	s, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "3", s)
}
