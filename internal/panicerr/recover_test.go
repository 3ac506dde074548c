package panicerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/rplcore/internal/panicerr"
)

func TestRecoverNoPanic(t *testing.T) {
	err := panicerr.Recover("test", func() error { return nil })
	assert.NoError(t, err)
}

func TestRecoverError(t *testing.T) {
	sentinel := errors.New("boom")
	err := panicerr.Recover("test", func() error { return sentinel })
	assert.Same(t, sentinel, err)
}

func TestRecoverPanic(t *testing.T) {
	err := panicerr.Recover("evalStep", func() error {
		panic("arena corrupt")
	})
	assert.Error(t, err)
	assert.True(t, panicerr.IsPanic(err))
	assert.Contains(t, err.Error(), "evalStep paniced: arena corrupt")
	assert.NotEmpty(t, panicerr.PanicStack(err))
}

func TestRecoverPanicWithError(t *testing.T) {
	sentinel := errors.New("nested")
	err := panicerr.Recover("evalStep", func() error {
		panic(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
}
