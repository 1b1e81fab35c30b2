package catalog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gaspos.GO/api"
	catalogEntity "gaspos.GO/model/entity/catalog"
	catalogRepo "gaspos.GO/model/repository/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := catalogRepo.NewCatalogRepository(db)
	g := apiGroup.Group("/brands")

	// GET /api/brands – public. Without store scope only global brands show.
	g.GET("", func(c echo.Context) error {
		storeID, _ := api.StoreScope(c)
		brands, err := repo.ListBrands(storeID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, brands)
	})

	// POST /api/brands – create a custom store-owned brand
	g.POST("", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var brand catalogEntity.Brand
		if err := c.Bind(&brand); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := repo.CreateBrand(storeID, &brand); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, brand)
	})

	// GET /api/brands/subscriptions – the store's active brand set
	g.GET("/subscriptions", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		subs, err := repo.ListSubscriptions(storeID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, subs)
	})

	// POST /api/brands/subscriptions – replace the active brand set wholesale
	g.POST("/subscriptions", func(c echo.Context) error {
		storeID, err := api.StoreScope(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		var body struct {
			BrandIDs []uint `json:"brand_ids"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := repo.ReplaceSubscriptions(storeID, body.BrandIDs); err != nil {
			if errors.Is(err, catalogRepo.ErrBrandNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		subs, err := repo.ListSubscriptions(storeID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, subs)
	})
}
