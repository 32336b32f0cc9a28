package baseDataService

import (
	"context"
	"fmt"
	"testing"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBlocks struct {
	block config.BlockRef
	err   error
}

func (s staticBlocks) GetCurrentBlock(ctx context.Context) (config.BlockRef, error) {
	return s.block, s.err
}

func Test_BaseDataService(t *testing.T) {
	t.Run("Should normalize a valid address", func(t *testing.T) {
		addr, err := ValidateAddress("D859701C81119aB12A1e62AF6270aD2AE05c7AB3")
		require.Nil(t, err)
		assert.Equal(t, "0xd859701c81119ab12a1e62af6270ad2ae05c7ab3", addr)
	})

	t.Run("Should reject missing and malformed addresses", func(t *testing.T) {
		_, err := ValidateAddress("")
		assert.ErrorIs(t, err, ErrAddressRequired)
		assert.True(t, IsValidationError(err))

		_, err = ValidateAddress("0xnothex")
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.Equal(t, "'0xnothex': invalid address", err.Error())

		assert.False(t, IsValidationError(fmt.Errorf("node down")))
	})

	t.Run("Should pin the current block", func(t *testing.T) {
		b := &BaseDataService{Blocks: staticBlocks{block: config.BlockRef{Number: 42, Time: 1000}}}
		block, err := b.GetCurrentBlock(context.Background())
		require.Nil(t, err)
		assert.Equal(t, uint64(42), block.Number)

		b = &BaseDataService{Blocks: staticBlocks{err: fmt.Errorf("timeout")}}
		_, err = b.GetCurrentBlock(context.Background())
		assert.EqualError(t, err, "failed to get current block: timeout")
	})
}
