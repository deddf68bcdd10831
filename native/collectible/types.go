package collectible

import (
	"errors"
	"fmt"

	"editionhouse/native/fees"
)

var (
	errNilState          = errors.New("collectible registry: state not configured")
	ErrZeroAddress       = errors.New("collectible registry: address must be set")
	ErrSupplyExhausted   = errors.New("collectible registry: maximum supply minted")
	ErrTokenNotFound     = errors.New("collectible registry: token not found")
	ErrInvalidRoyalties  = errors.New("collectible registry: royalty shares exceed 10000 bps")
	ErrClaimStatusNotSet = errors.New("collectible registry: claim status source not configured")
)

// Token is one minted edition of the series.
type Token struct {
	ID      uint64   `json:"id"`
	Owner   [20]byte `json:"owner"`
	Creator [20]byte `json:"creator"`
}

// Split routes a share of every sale's creator-net amount to a collaborator.
type Split struct {
	Recipient [20]byte `json:"recipient"`
	ShareBps  uint32   `json:"shareBps"`
}

// Series describes the fixed parameters of the collection.
type Series struct {
	Address          [20]byte
	Creator          [20]byte
	MaxTotalSupply   uint64
	MaxMintPerWallet uint64
	// Royalties are paid out of the creator-net amount; the creator receives
	// whatever they leave over.
	Royalties    []Split
	ClaimedURI   string
	UnclaimedURI string
}

// Validate checks the series parameters.
func (s Series) Validate() error {
	if s.Address == ([20]byte{}) || s.Creator == ([20]byte{}) {
		return ErrZeroAddress
	}
	var total uint64
	for i, split := range s.Royalties {
		if split.Recipient == ([20]byte{}) {
			return fmt.Errorf("%w: royalty %d", ErrZeroAddress, i)
		}
		total += uint64(split.ShareBps)
	}
	if total > fees.BasisPoints {
		return ErrInvalidRoyalties
	}
	return nil
}
