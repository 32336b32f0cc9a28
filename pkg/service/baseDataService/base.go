package baseDataService

import (
	"context"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/utils"
	"github.com/pkg/errors"
)

var (
	ErrAddressRequired = errors.New("address is required")
	ErrInvalidAddress  = errors.New("invalid address")
)

// BlockSource provides the block a query is pinned to.
type BlockSource interface {
	GetCurrentBlock(ctx context.Context) (config.BlockRef, error)
}

type BaseDataService struct {
	Blocks BlockSource
}

// GetCurrentBlock pins the block every state read and event read of a query is made at.
func (b *BaseDataService) GetCurrentBlock(ctx context.Context) (config.BlockRef, error) {
	block, err := b.Blocks.GetCurrentBlock(ctx)
	if err != nil {
		return config.BlockRef{}, errors.Wrap(err, "failed to get current block")
	}
	return block, nil
}

// ValidateAddress checks an address parameter and returns it lowercased with the 0x prefix.
func ValidateAddress(address string) (string, error) {
	if address == "" {
		return "", ErrAddressRequired
	}
	if !utils.IsValidAddress(address) {
		return "", errors.Wrapf(ErrInvalidAddress, "'%s'", address)
	}
	return utils.NormalizeAddress(address), nil
}

// IsValidationError reports whether err was caused by a bad address parameter.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrAddressRequired) || errors.Is(err, ErrInvalidAddress)
}
