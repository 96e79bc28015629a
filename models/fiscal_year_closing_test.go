package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/types"
)

func TestMarkYearClosedLatch(t *testing.T) {
	setupTest(t)

	// No record yet.
	closing, err := FindYearClosing(2095)
	require.NoError(t, err)
	assert.Nil(t, closing)

	// First close creates the record lazily and flips it.
	closing, err = MarkYearClosed(2095, null.Uint64From(42))
	require.NoError(t, err)
	assert.Equal(t, types.ClosingClosed, closing.Status)
	assert.True(t, closing.ClosedAt.Valid)
	assert.Equal(t, uint64(42), closing.ClosingEntryID.Uint64)

	// Second close loses on the latch.
	_, err = MarkYearClosed(2095, null.Uint64{})
	var already *types.AlreadyClosedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, 2095, already.Year)

	// Other years are unaffected.
	_, err = MarkYearClosed(2096, null.Uint64{})
	require.NoError(t, err)
}
