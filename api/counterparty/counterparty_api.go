package counterparty

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gaspos.GO/api"
	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	counterpartyRepo "gaspos.GO/model/repository/counterparty"
	ledgerRepo "gaspos.GO/model/repository/ledger"
)

func init() {
	api.RegisterModule(RegisterCounterpartyRoutes)
}

func RegisterCounterpartyRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := counterpartyRepo.NewCounterpartyRepository(db)
	ledger := ledgerRepo.NewLedgerRepository(db)
	g := apiGroup.Group("/counterparties")

	// GET /api/counterparties?kind= – list, optionally filtered by kind
	g.GET("", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		kind := counterpartyEntity.Kind(c.QueryParam("kind"))
		cps, err := repo.List(storeID, kind)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cps)
	})

	// POST /api/counterparties – register customer/shop/vehicle/staff
	g.POST("", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var cp counterpartyEntity.Counterparty
		if err := c.Bind(&cp); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cp.StoreID = storeID
		cp.CounterpartyID = ""
		if err := repo.Create(&cp); err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusCreated, cp)
	})

	g.GET("/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cp, err := repo.Get(storeID, c.Param("id"))
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cp)
	})

	// PATCH /api/counterparties/:id – partial contact update
	g.PATCH("/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var fields map[string]interface{}
		if err := c.Bind(&fields); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cp, err := repo.Update(storeID, c.Param("id"), fields)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cp)
	})

	// DELETE /api/counterparties/:id – soft delete, rejected with history
	g.DELETE("/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := repo.Delete(storeID, c.Param("id")); err != nil {
			return jsonError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	// GET /api/counterparties/:id/balance – outstanding due replayed from the ledger
	g.GET("/:id/balance", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cp, err := repo.Get(storeID, c.Param("id"))
		if err != nil {
			return jsonError(c, err)
		}
		balance, err := ledger.OutstandingBalance(storeID, cp.Ref())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"counterparty_id": cp.CounterpartyID,
			"kind":            cp.Kind,
			"balance":         balance,
		})
	})

	// GET /api/counterparties/:id/entries – settlement history
	g.GET("/:id/entries", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cp, err := repo.Get(storeID, c.Param("id"))
		if err != nil {
			return jsonError(c, err)
		}
		entries, err := ledger.EntriesFor(storeID, cp.Ref())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, entries)
	})
}

func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, counterpartyRepo.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, counterpartyRepo.ErrInvalidKind),
		errors.Is(err, counterpartyRepo.ErrNameBlank):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, counterpartyRepo.ErrReferenced):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
