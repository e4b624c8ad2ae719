package market

import (
	"context"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

// Service combines the Alchemy and Etherscan clients into the single
// MarketData collaborator the dialog engine depends on.
type Service struct {
	alchemy   *AlchemyClient
	etherscan *EtherscanClient
}

func NewService(alchemy *AlchemyClient, etherscan *EtherscanClient) *Service {
	return &Service{alchemy: alchemy, etherscan: etherscan}
}

func (s *Service) EthBalance(ctx context.Context, address string) (float64, error) {
	return s.alchemy.EthBalance(ctx, address)
}

func (s *Service) TokenBalances(ctx context.Context, address string) ([]domain.TokenBalance, error) {
	return s.alchemy.TokenBalances(ctx, address)
}

func (s *Service) GasPriceGwei(ctx context.Context) (float64, error) {
	return s.alchemy.GasPriceGwei(ctx)
}

func (s *Service) EthUSDPrice(ctx context.Context) (float64, error) {
	return s.etherscan.EthUSDPrice(ctx)
}

var _ domain.MarketData = (*Service)(nil)
