package solver

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// BuildBufferSolution settles one order directly against the settlement
// contract's internal buffers. The buy token is priced at the buy amount
// and the sell token one above the sell amount, which clears the full
// sell with a sliver of surplus. No liquidity is touched, so the
// interaction list is present but empty.
func BuildBufferSolution(o domain.Order) (domain.Solution, error) {
	sellPrice, err := o.SellAmount.Add(domain.NewAmount(1))
	if err != nil {
		return domain.Solution{}, fmt.Errorf("solver: price for order %s: %w", o.UID, err)
	}
	return domain.Solution{
		ID: 1,
		Prices: map[common.Address]domain.Amount{
			o.SellToken: sellPrice,
			o.BuyToken:  o.BuyAmount,
		},
		Trades: []domain.Trade{{
			Kind:           domain.TradeFulfillment,
			Order:          o.UID,
			Fee:            domain.NewAmount(0),
			ExecutedAmount: o.SellAmount,
		}},
		Interactions: []domain.Interaction{},
	}, nil
}
