package panicerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	t.Run("normal return", func(t *testing.T) {
		assert.NoError(t, Recover("t", func() error { return nil }))
	})

	t.Run("error return", func(t *testing.T) {
		bad := errors.New("bad")
		err := Recover("t", func() error { return bad })
		assert.Equal(t, bad, err)
		assert.False(t, IsPanic(err))
	})

	t.Run("error panic", func(t *testing.T) {
		cause := errors.New("shrug")
		err := Recover("t", func() error { panic(cause) })
		require.Error(t, err)
		assert.EqualError(t, err, "t paniced: shrug")
		assert.True(t, IsPanic(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("non error panic", func(t *testing.T) {
		err := Recover("t", func() error { panic("oops") })
		require.Error(t, err)
		assert.True(t, IsPanic(err))
		assert.Contains(t, err.Error(), "oops")
	})
}
