package marketdata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// MarketData obtiene la foto actual del mercado de un arena.
// GET /api/arenas/{id}/market-data
func (c *Client) MarketData(ctx context.Context, arenaID string) (domain.MarketData, error) {
	u := fmt.Sprintf("%s/api/arenas/%s/market-data", c.apiBase, url.PathEscape(arenaID))

	var dto marketDataDTO
	if err := c.get(ctx, u, &dto); err != nil {
		return domain.MarketData{}, fmt.Errorf("marketdata.MarketData: %s: %w", arenaID, err)
	}
	return dto.toDomain(), nil
}

// PriceHistory obtiene la serie histórica de un arena para la ventana dada.
// GET /api/arenas/{id}/price-history?timeframe=24h
func (c *Client) PriceHistory(ctx context.Context, arenaID string, tf domain.Timeframe) ([]domain.PriceSample, error) {
	u := fmt.Sprintf("%s/api/arenas/%s/price-history?timeframe=%s",
		c.apiBase, url.PathEscape(arenaID), url.QueryEscape(string(tf)))

	var points []pricePointDTO
	if err := c.get(ctx, u, &points); err != nil {
		return nil, fmt.Errorf("marketdata.PriceHistory: %s: %w", arenaID, err)
	}
	return mapPoints(points), nil
}
