package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	catalogEntity "gaspos.GO/model/entity/catalog"
	inventoryEntity "gaspos.GO/model/entity/inventory"
)

func patchRowPath(rowID uint) string {
	return fmt.Sprintf("/api/inventory/rows/%d?store_id=1", rowID)
}

func defectsPath(rowID uint) string {
	return fmt.Sprintf("/api/inventory/rows/%d/defects?store_id=1", rowID)
}

func accessoryPath(accessoryID uint) string {
	return fmt.Sprintf("/api/inventory/accessories/%d?store_id=1", accessoryID)
}

func TestInventoryAPI_GetInventory(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)
	seedSaleFixture(t, db)

	db.Create(&inventoryEntity.AccessoryItem{StoreID: 1, Name: "Hose clamp", Stock: 40})

	rec := doJSON(e, http.MethodGet, "/api/inventory?store_id=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Rows        []inventoryEntity.InventoryRow  `json:"rows"`
		Accessories []inventoryEntity.AccessoryItem `json:"accessories"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].FullCount != 10 {
		t.Errorf("rows = %+v, want one row at full 10", resp.Rows)
	}
	if len(resp.Accessories) != 1 {
		t.Errorf("accessories = %+v, want 1", resp.Accessories)
	}

	// Another store sees nothing.
	rec = doJSON(e, http.MethodGet, "/api/inventory?store_id=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty struct {
		Rows []inventoryEntity.InventoryRow `json:"rows"`
	}
	json.NewDecoder(rec.Body).Decode(&empty)
	if len(empty.Rows) != 0 {
		t.Errorf("store 2 rows = %d, want 0", len(empty.Rows))
	}
}

func TestInventoryAPI_PatchRow(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)
	rowID := seedSaleFixture(t, db)

	rec := doJSON(e, http.MethodPatch, patchRowPath(rowID), map[string]interface{}{
		"counts": map[string]interface{}{"full": 5, "empty": 2},
		"prices": map[string]interface{}{"sell_packaged": "3100", "buy_packaged": 2650},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var row inventoryEntity.InventoryRow
	if err := json.NewDecoder(rec.Body).Decode(&row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.FullCount != 15 || row.EmptyCount != 2 {
		t.Errorf("counts = full %d empty %d, want 15/2", row.FullCount, row.EmptyCount)
	}
	if row.SellPackaged.String() != "3100" {
		t.Errorf("sell_packaged = %s, want 3100", row.SellPackaged)
	}

	// A delta below zero is rejected as a whole.
	rec = doJSON(e, http.MethodPatch, patchRowPath(rowID), map[string]interface{}{
		"counts": map[string]interface{}{"full": -100},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", rec.Code, rec.Body)
	}

	// Empty body is a bad request.
	rec = doJSON(e, http.MethodPatch, patchRowPath(rowID), map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// A valid count delta paired with a bad price leaves the row untouched.
	rec = doJSON(e, http.MethodPatch, patchRowPath(rowID), map[string]interface{}{
		"counts": map[string]interface{}{"full": 5},
		"prices": map[string]interface{}{"sell_packaged": "-1"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body %s", rec.Code, rec.Body)
	}
	if err := db.First(&row, rowID).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	if row.FullCount != 15 {
		t.Errorf("full after rejected patch = %d, want 15", row.FullCount)
	}
	if row.SellPackaged.String() != "3100" {
		t.Errorf("sell_packaged after rejected patch = %s, want 3100", row.SellPackaged)
	}

	// Cross-store access is a 404.
	rec = doJSON(e, http.MethodPatch, "/api/inventory/rows/1?store_id=2", map[string]interface{}{
		"counts": map[string]interface{}{"full": 1},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestInventoryAPI_Defects(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)
	rowID := seedSaleFixture(t, db)

	rec := doJSON(e, http.MethodPost, defectsPath(rowID), map[string]interface{}{"qty": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Counts inventoryEntity.Counts `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Counts.Defected != 3 {
		t.Errorf("defected = %d, want 3", resp.Counts.Defected)
	}

	// Repair two units.
	rec = doJSON(e, http.MethodPost, defectsPath(rowID), map[string]interface{}{"qty": 2, "unmark": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("unmark status = %d, body %s", rec.Code, rec.Body)
	}

	// Ceiling: only 10 physical units exist.
	rec = doJSON(e, http.MethodPost, defectsPath(rowID), map[string]interface{}{"qty": 10})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("over-ceiling status = %d, want 422, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(e, http.MethodPost, defectsPath(rowID), map[string]interface{}{"qty": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero qty status = %d, want 400", rec.Code)
	}
}

func TestInventoryAPI_Accessories(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/inventory/accessories?store_id=1", map[string]interface{}{
		"name":       "Gas hose 2m",
		"stock":      12,
		"sell_price": "350",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201, body %s", rec.Code, rec.Body)
	}
	var item inventoryEntity.AccessoryItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.AccessoryID == 0 || item.StoreID != 1 {
		t.Fatalf("item = %+v, want assigned id on store 1", item)
	}

	// Nameless is rejected.
	rec = doJSON(e, http.MethodPost, "/api/inventory/accessories?store_id=1", map[string]interface{}{"stock": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("nameless status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodPatch, accessoryPath(item.AccessoryID), map[string]interface{}{
		"delta_stock":   -2,
		"delta_damaged": 1,
		"prices":        map[string]interface{}{"sell_price": "360"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}
	var updated inventoryEntity.AccessoryItem
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Stock != 10 || updated.DamagedStock != 1 {
		t.Errorf("stock = %d damaged = %d, want 10/1", updated.Stock, updated.DamagedStock)
	}
	if updated.SellPrice.String() != "360" {
		t.Errorf("sell = %s, want 360", updated.SellPrice)
	}

	// Damaged beyond stock is an invariant failure.
	rec = doJSON(e, http.MethodPatch, accessoryPath(item.AccessoryID), map[string]interface{}{
		"delta_damaged": 50,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", rec.Code, rec.Body)
	}
}

func TestCatalogAPI_BrandsAndSubscriptions(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)

	global := &catalogEntity.Brand{Name: "Omera", Origin: catalogEntity.OriginGlobal}
	if err := db.Create(global).Error; err != nil {
		t.Fatalf("seed brand: %v", err)
	}

	// Create a custom brand for store 1.
	rec := doJSON(e, http.MethodPost, "/api/brands?store_id=1", map[string]interface{}{
		"name":  "House Brand",
		"color": "#ff6600",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var custom catalogEntity.Brand
	if err := json.NewDecoder(rec.Body).Decode(&custom); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if custom.Origin != catalogEntity.OriginCustom || custom.StoreID == nil {
		t.Errorf("custom brand = %+v, want custom origin scoped to store", custom)
	}

	rec = doJSON(e, http.MethodGet, "/api/brands?store_id=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var brands []catalogEntity.Brand
	json.NewDecoder(rec.Body).Decode(&brands)
	if len(brands) != 2 {
		t.Errorf("brands = %d, want 2", len(brands))
	}

	// Replace the subscription set.
	rec = doJSON(e, http.MethodPost, "/api/brands/subscriptions?store_id=1", map[string]interface{}{
		"brand_ids": []uint{global.BrandID, custom.BrandID},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribe status = %d, body %s", rec.Code, rec.Body)
	}
	var subs []catalogEntity.BrandSubscription
	json.NewDecoder(rec.Body).Decode(&subs)
	if len(subs) != 2 {
		t.Errorf("subs = %d, want 2", len(subs))
	}

	// Unknown brand id in the set is a 404.
	rec = doJSON(e, http.MethodPost, "/api/brands/subscriptions?store_id=1", map[string]interface{}{
		"brand_ids": []uint{9999},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown brand status = %d, want 404, body %s", rec.Code, rec.Body)
	}
}
