package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"gaspos.GO/core/auth"
)

var ErrStoreScope = errors.New("store_id is required")

// StoreScope returns the tenant scope of a request: the store bound to the
// API token when token auth is in use, otherwise the store_id query param.
// Every operation is scoped by it; cross-store access is never valid.
func StoreScope(c echo.Context) (uint, error) {
	if v := c.Get(auth.CtxStoreID); v != nil {
		if id, ok := v.(uint); ok && id != 0 {
			return id, nil
		}
	}
	raw := c.QueryParam("store_id")
	if raw == "" {
		return 0, ErrStoreScope
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrStoreScope
	}
	return uint(id), nil
}

// ActorScope returns the acting staff id, zero when unknown.
func ActorScope(c echo.Context) uint {
	if v := c.Get(auth.CtxActorID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	raw := c.QueryParam("actor_id")
	if raw == "" {
		return 0
	}
	id, _ := strconv.ParseUint(raw, 10, 32)
	return uint(id)
}

// ParsePricePair parses optional decimal strings from a loose payload.
func ParsePricePair(buy, sell *string) (*decimal.Decimal, *decimal.Decimal, error) {
	var b, s *decimal.Decimal
	if buy != nil {
		v, err := decimal.NewFromString(*buy)
		if err != nil {
			return nil, nil, err
		}
		b = &v
	}
	if sell != nil {
		v, err := decimal.NewFromString(*sell)
		if err != nil {
			return nil, nil, err
		}
		s = &v
	}
	return b, s, nil
}
