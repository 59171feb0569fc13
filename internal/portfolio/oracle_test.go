package portfolio

import (
	"context"
	"testing"

	"github.com/mbomani/soulscout/internal/domain"
)

type stubCG struct {
	prices map[string]float64
}

func (s stubCG) PriceUSD(ctx context.Context, symbol string) (float64, bool, error) {
	p, ok := s.prices[symbol]
	return p, ok, nil
}

type stubDEX struct {
	pools map[string]PoolInfo
}

func (s stubDEX) PoolInfo(ctx context.Context, mint string) (PoolInfo, bool, error) {
	p, ok := s.pools[mint]
	return p, ok, nil
}

func TestOracle_PrefersCoinGecko(t *testing.T) {
	o := NewOracle(stubCG{prices: map[string]float64{"WIF": 2.5}}, stubDEX{})
	h := domain.Holding{Mint: "mint1", Symbol: "WIF", Amount: 10}
	priced := o.Price(context.Background(), h)

	if priced.Tag != domain.ValuationCG {
		t.Errorf("expected CG tag, got %s", priced.Tag)
	}
	if priced.USDValue != 25 {
		t.Errorf("expected value 25, got %v", priced.USDValue)
	}
}

func TestOracle_FallsBackToFullDEX(t *testing.T) {
	o := NewOracle(stubCG{}, stubDEX{pools: map[string]PoolInfo{
		"mint1": {Price: 1.0, LiquidityUSD: 100_000},
	}})
	h := domain.Holding{Mint: "mint1", Symbol: "UNLISTED", Amount: 10}
	priced := o.Price(context.Background(), h)

	if priced.Tag != domain.ValuationDEX {
		t.Errorf("expected DEX tag, got %s", priced.Tag)
	}
}

func TestOracle_HaircutTier(t *testing.T) {
	o := NewOracle(stubCG{}, stubDEX{pools: map[string]PoolInfo{
		"mint1": {Price: 1.0, LiquidityUSD: 40_000},
	}})
	h := domain.Holding{Mint: "mint1", Symbol: "UNLISTED", Amount: 10}
	priced := o.Price(context.Background(), h)

	if priced.Tag != domain.ValuationEst50 {
		t.Errorf("expected EST_50 tag, got %s", priced.Tag)
	}
}

func TestOracle_NAWhenUnpriceable(t *testing.T) {
	o := NewOracle(stubCG{}, stubDEX{pools: map[string]PoolInfo{
		"mint1": {Price: 1.0, LiquidityUSD: 1_000},
	}})
	h := domain.Holding{Mint: "mint1", Symbol: "UNLISTED", Amount: 10}
	priced := o.Price(context.Background(), h)

	if priced.Tag != domain.ValuationNA {
		t.Errorf("expected NA tag, got %s", priced.Tag)
	}
	if priced.Priced {
		t.Error("expected Priced=false")
	}
}
