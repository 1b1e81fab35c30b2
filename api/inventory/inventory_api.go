package inventory

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gaspos.GO/api"
	inventoryEntity "gaspos.GO/model/entity/inventory"
	inventoryRepo "gaspos.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

// InventoryResponse bundles a store's stock view.
type InventoryResponse struct {
	Rows        []inventoryEntity.InventoryRow  `json:"rows"`
	Accessories []inventoryEntity.AccessoryItem `json:"accessories"`
}

func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := inventoryRepo.NewInventoryRepository(db)
	g := apiGroup.Group("/inventory")

	// GET /api/inventory – rows and accessories for a store
	g.GET("", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		var resp InventoryResponse
		var eg errgroup.Group
		eg.Go(func() error {
			rows, err := repo.ListRows(storeID)
			resp.Rows = rows
			return err
		})
		eg.Go(func() error {
			items, err := repo.ListAccessories(storeID)
			resp.Accessories = items
			return err
		})
		if err := eg.Wait(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, resp)
	})

	// PATCH /api/inventory/rows/:id – direct count delta and/or price update,
	// the non-settlement path for restocks and price edits.
	g.PATCH("/rows/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rowID, err := parseID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid row id"})
		}

		var body struct {
			Counts map[string]interface{} `json:"counts"`
			Prices map[string]interface{} `json:"prices"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Counts) == 0 && len(body.Prices) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "counts or prices required"})
		}

		var delta inventoryRepo.CountsDelta
		if len(body.Counts) > 0 {
			if err := decodeBody(body.Counts, &delta); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}
		var prices inventoryRepo.PriceUpdate
		if len(body.Prices) > 0 {
			if err := decodeBody(body.Prices, &prices); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}

		// Scope check before any mutation.
		if _, err := repo.GetRow(storeID, rowID); err != nil {
			return jsonError(c, err)
		}

		// Counts and prices apply together or not at all.
		var row *inventoryEntity.InventoryRow
		err = db.Transaction(func(tx *gorm.DB) error {
			txRepo := inventoryRepo.NewInventoryRepository(tx)
			if len(body.Counts) > 0 {
				if _, err := txRepo.AdjustCounts(tx, rowID, delta); err != nil {
					return err
				}
			}
			if len(body.Prices) > 0 {
				if _, err := txRepo.SetPrices(storeID, rowID, prices); err != nil {
					return err
				}
			}
			var gerr error
			row, gerr = txRepo.GetRow(storeID, rowID)
			return gerr
		})
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, row)
	})

	// POST /api/inventory/rows/:id/defects – mark or unmark defected units
	g.POST("/rows/:id/defects", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rowID, err := parseID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid row id"})
		}

		var body struct {
			Qty    int64 `json:"qty"`
			Unmark bool  `json:"unmark"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Qty <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "qty must be positive"})
		}

		if _, err := repo.GetRow(storeID, rowID); err != nil {
			return jsonError(c, err)
		}

		var counts inventoryEntity.Counts
		if body.Unmark {
			counts, err = repo.UnmarkDefected(nil, rowID, body.Qty)
		} else {
			counts, err = repo.MarkDefected(nil, rowID, body.Qty)
		}
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"row_id": rowID, "counts": counts})
	})

	// Accessory endpoints share the group for a single inventory surface.
	g.GET("/accessories", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		items, err := repo.ListAccessories(storeID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, items)
	})

	g.POST("/accessories", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var item inventoryEntity.AccessoryItem
		if err := c.Bind(&item); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		item.StoreID = storeID
		if item.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if err := repo.CreateAccessory(&item); err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusCreated, item)
	})

	g.PATCH("/accessories/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		accessoryID, err := parseID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid accessory id"})
		}

		var body struct {
			DeltaStock   int64                  `json:"delta_stock"`
			DeltaDamaged int64                  `json:"delta_damaged"`
			Prices       map[string]interface{} `json:"prices"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		if _, err := repo.GetAccessory(storeID, accessoryID); err != nil {
			return jsonError(c, err)
		}

		if body.DeltaStock != 0 || body.DeltaDamaged != 0 {
			if _, err := repo.AdjustAccessory(nil, accessoryID, body.DeltaStock, body.DeltaDamaged); err != nil {
				return jsonError(c, err)
			}
		}
		if len(body.Prices) > 0 {
			var prices struct {
				Buy  *string `mapstructure:"buy_price"`
				Sell *string `mapstructure:"sell_price"`
			}
			if err := decodeBody(body.Prices, &prices); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			buy, sell, err := api.ParsePricePair(prices.Buy, prices.Sell)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			if _, err := repo.SetAccessoryPrices(storeID, accessoryID, buy, sell); err != nil {
				return jsonError(c, err)
			}
		}

		item, err := repo.GetAccessory(storeID, accessoryID)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, item)
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// decodeBody maps a loose JSON object onto a typed update struct. Weak typing
// lets numeric strings through, matching what POS clients actually send.
func decodeBody(src map[string]interface{}, dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// decimalHook converts raw JSON numbers and numeric strings into decimals so
// price fields survive the loose decode.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
}

// jsonError maps repository errors onto the HTTP taxonomy.
func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, inventoryRepo.ErrRowNotFound),
		errors.Is(err, inventoryRepo.ErrAccessoryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, inventoryRepo.ErrNegativeStock),
		errors.Is(err, inventoryRepo.ErrDefectInvariant),
		errors.Is(err, inventoryRepo.ErrDamagedInvariant):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, inventoryRepo.ErrNegativePrice):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, inventoryRepo.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
