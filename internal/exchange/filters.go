package exchange

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/ashishbot120/trading-bot/internal/metrics"
)

// Filters holds the per-symbol trading constraints extracted from
// exchangeInfo. Values are immutable once stored in the cache.
type Filters struct {
	PriceTick decimal.Decimal
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	QtyStep   decimal.Decimal
	MinQty    decimal.Decimal
	MaxQty    decimal.Decimal
}

// FiltersFor locates symbol in the catalog (exact match) and extracts the
// PRICE_FILTER and LOT_SIZE constraints.
func FiltersFor(info *ExchangeInfo, symbol string) (Filters, error) {
	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		var f Filters
		var havePrice, haveLot bool
		for _, flt := range s.Filters {
			switch flt.FilterType {
			case "PRICE_FILTER":
				tick, err := decimal.NewFromString(flt.TickSize)
				if err != nil {
					return Filters{}, fmt.Errorf("parse tickSize for %s: %w", symbol, err)
				}
				minP, err := decimal.NewFromString(flt.MinPrice)
				if err != nil {
					return Filters{}, fmt.Errorf("parse minPrice for %s: %w", symbol, err)
				}
				maxP, err := decimal.NewFromString(flt.MaxPrice)
				if err != nil {
					return Filters{}, fmt.Errorf("parse maxPrice for %s: %w", symbol, err)
				}
				f.PriceTick, f.MinPrice, f.MaxPrice = tick, minP, maxP
				havePrice = true
			case "LOT_SIZE":
				step, err := decimal.NewFromString(flt.StepSize)
				if err != nil {
					return Filters{}, fmt.Errorf("parse stepSize for %s: %w", symbol, err)
				}
				minQ, err := decimal.NewFromString(flt.MinQty)
				if err != nil {
					return Filters{}, fmt.Errorf("parse minQty for %s: %w", symbol, err)
				}
				maxQ, err := decimal.NewFromString(flt.MaxQty)
				if err != nil {
					return Filters{}, fmt.Errorf("parse maxQty for %s: %w", symbol, err)
				}
				f.QtyStep, f.MinQty, f.MaxQty = step, minQ, maxQ
				haveLot = true
			}
		}
		if !havePrice || !haveLot {
			return Filters{}, fmt.Errorf("%s missing PRICE_FILTER or LOT_SIZE", symbol)
		}
		return f, nil
	}
	return Filters{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

type filterKey struct {
	baseURL string
	apiKey  string
	secret  string
	symbol  string
}

// DefaultFilterCacheSize bounds distinct (endpoint, credentials, symbol) keys.
const DefaultFilterCacheSize = 256

// FilterCache memoizes symbol filters for the process lifetime. Entries never
// expire; capacity is bounded with LRU eviction. Safe for concurrent use.
type FilterCache struct {
	entries *lru.Cache[filterKey, Filters]
}

// NewFilterCache builds a cache holding at most capacity keys.
func NewFilterCache(capacity int) (*FilterCache, error) {
	if capacity <= 0 {
		capacity = DefaultFilterCacheSize
	}
	entries, err := lru.New[filterKey, Filters](capacity)
	if err != nil {
		return nil, err
	}
	return &FilterCache{entries: entries}, nil
}

// Get returns the cached filters for the client's endpoint and symbol,
// fetching exchangeInfo once on a miss.
func (fc *FilterCache) Get(ctx context.Context, client *Client, symbol string) (Filters, error) {
	key := filterKey{
		baseURL: client.baseURL,
		apiKey:  client.apiKey,
		secret:  string(client.secret),
		symbol:  symbol,
	}
	if f, ok := fc.entries.Get(key); ok {
		metrics.FilterCache.WithLabelValues("hit").Inc()
		return f, nil
	}
	metrics.FilterCache.WithLabelValues("miss").Inc()

	info, err := client.GetExchangeInfo(ctx)
	if err != nil {
		return Filters{}, err
	}
	f, err := FiltersFor(info, symbol)
	if err != nil {
		return Filters{}, err
	}
	fc.entries.Add(key, f)
	return f, nil
}
