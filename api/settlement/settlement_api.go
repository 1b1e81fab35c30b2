package settlement

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gaspos.GO/api"
	"gaspos.GO/core/registry"
	catalogRepo "gaspos.GO/model/repository/catalog"
	counterpartyRepo "gaspos.GO/model/repository/counterparty"
	inventoryRepo "gaspos.GO/model/repository/inventory"
	settlementService "gaspos.GO/service/settlement"
)

func init() {
	api.RegisterModule(RegisterSettlementRoutes)
}

func RegisterSettlementRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := settlementService.NewService(db)
	g := apiGroup.Group("/settlements")

	// POST /api/settlements – apply one atomic multi-line settlement
	g.POST("", func(c echo.Context) error {
		start := time.Now()
		if v, ok := c.Get(registry.KeyRequestStart).(time.Time); ok {
			start = v
		}

		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		var req settlementService.Request
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if req.ActorID == 0 {
			req.ActorID = api.ActorScope(c)
		}

		res, err := svc.Settle(storeID, req)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return settlementError(c, err, duration)
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusCreated, res)
	})

	// GET /api/settlements/:id – one ledger entry with lines
	g.GET("/:id", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		entry, err := svc.Ledger().GetEntry(storeID, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "settlement not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, entry)
	})
}

// settlementError maps the settlement taxonomy onto HTTP statuses. Validation
// and invariant rejections carry the offending line in the message so the UI
// can highlight it.
func settlementError(c echo.Context, err error, duration int64) error {
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

	var vErr *settlementService.ValidationError
	var invErr *inventoryRepo.InvariantError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "line": vErr.Line})
	case errors.As(err, &invErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "row_id": invErr.RowID})
	case errors.Is(err, counterpartyRepo.ErrNotFound),
		errors.Is(err, inventoryRepo.ErrRowNotFound),
		errors.Is(err, inventoryRepo.ErrAccessoryNotFound),
		errors.Is(err, catalogRepo.ErrBrandNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, catalogRepo.ErrBrandNotSubscribed):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, catalogRepo.ErrBadCategory),
		errors.Is(err, catalogRepo.ErrBadVariantKey):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, settlementService.ErrTransient):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
