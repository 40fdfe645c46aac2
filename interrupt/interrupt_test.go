package interrupt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/isoforest/interrupt"
	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

func TestTokenCheck(t *testing.T) {
	var token interrupt.Token

	assert.False(t, token.Interrupted())
	assert.NoError(t, token.Check())

	token.Set()
	assert.True(t, token.Interrupted())
	assert.ErrorIs(t, token.Check(), isoErrors.ErrInterrupted)

	token.Clear()
	assert.NoError(t, token.Check())
}

func TestArmIsSingleOwner(t *testing.T) {
	var token interrupt.Token

	first := interrupt.Arm(&token)
	defer first.Release()
	require.True(t, first.Active())

	second := interrupt.Arm(&token)
	assert.False(t, second.Active(), "nested arm must be a no-op")
	second.Release() // must not disturb the first guard
	assert.True(t, first.Active())
}

func TestReleaseIsIdempotentAndAllowsRearm(t *testing.T) {
	var token interrupt.Token

	g := interrupt.Arm(&token)
	require.True(t, g.Active())
	g.Release()
	g.Release()
	assert.False(t, g.Active())

	again := interrupt.Arm(&token)
	assert.True(t, again.Active(), "ownership must be reclaimable after release")
	again.Release()
}

func TestArmClearsStaleToken(t *testing.T) {
	var token interrupt.Token
	token.Set()

	g := interrupt.Arm(&token)
	defer g.Release()

	assert.False(t, token.Interrupted(), "arming must reset a stale flag")
}

func TestGuardCheckReleasesOnHit(t *testing.T) {
	var token interrupt.Token

	g := interrupt.Arm(&token)
	require.NoError(t, g.Check())

	token.Set()
	assert.ErrorIs(t, g.Check(), isoErrors.ErrInterrupted)
	assert.False(t, g.Active(), "guard must restore the handler when reporting the interruption")
}
