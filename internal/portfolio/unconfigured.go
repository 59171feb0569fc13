package portfolio

import (
	"context"
	"fmt"

	"github.com/mbomani/soulscout/internal/domain"
)

// unconfiguredFetcher is the default HoldingsFetcher until a concrete
// Solana RPC client (an external collaborator out of scope here) is
// injected; it fails loudly rather than silently returning an empty
// portfolio, so a misconfigured deployment is obvious from the reply.
type unconfiguredFetcher struct{}

func (unconfiguredFetcher) Holdings(ctx context.Context, walletAddress string) ([]domain.Holding, error) {
	return nil, fmt.Errorf("holdings fetcher not configured: no RPC client wired for %s", walletAddress)
}

// unconfiguredPriceSource backs both CGSource and DEXSource when no
// price integration has been wired yet; it reports "no answer" so the
// oracle cascade degrades every holding to NA instead of erroring.
type unconfiguredPriceSource struct{}

func (unconfiguredPriceSource) PriceUSD(ctx context.Context, symbol string) (float64, bool, error) {
	return 0, false, nil
}

func (unconfiguredPriceSource) PoolInfo(ctx context.Context, mint string) (PoolInfo, bool, error) {
	return PoolInfo{}, false, nil
}

// DefaultHoldingsFetcher returns the unconfigured placeholder.
func DefaultHoldingsFetcher() HoldingsFetcher { return unconfiguredFetcher{} }

// DefaultPriceSources returns the unconfigured placeholders satisfying
// both CGSource and DEXSource.
func DefaultPriceSources() (CGSource, DEXSource) {
	p := unconfiguredPriceSource{}
	return p, p
}
