package fees

import (
	"encoding/json"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

type tierJSON struct {
	Recipient string `json:"recipient"`
	ShareBps  uint32 `json:"shareBps"`
}

// MarshalJSON renders the recipient as a checksummed hex address.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(tierJSON{Recipient: ethcommon.Address(t.Recipient).Hex(), ShareBps: t.ShareBps})
}

// UnmarshalJSON accepts the hex address form produced by MarshalJSON.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var decoded tierJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	tier, err := ParseTier(decoded.Recipient, decoded.ShareBps)
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParseTier builds a tier from a hex recipient address. Validation of the
// share is left to Table.Validate.
func ParseTier(recipient string, shareBps uint32) (Tier, error) {
	trimmed := strings.TrimSpace(recipient)
	if !ethcommon.IsHexAddress(trimmed) {
		return Tier{}, fmt.Errorf("fees: invalid tier recipient %q", recipient)
	}
	return Tier{Recipient: ethcommon.HexToAddress(trimmed), ShareBps: shareBps}, nil
}
