package apitest

import (
	"encoding/json"
	"net/http"
	"testing"

	counterpartyEntity "gaspos.GO/model/entity/counterparty"
)

func TestCounterpartyAPI_CRUD(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)

	rec := doJSON(e, http.MethodPost, "/api/counterparties?store_id=1", map[string]interface{}{
		"kind":  "customer",
		"name":  "Rahim",
		"phone": "01711000001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var cp counterpartyEntity.Counterparty
	if err := json.NewDecoder(rec.Body).Decode(&cp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cp.CounterpartyID == "" {
		t.Fatal("counterparty_id not assigned")
	}

	// Unknown kind is a 400.
	rec = doJSON(e, http.MethodPost, "/api/counterparties?store_id=1", map[string]interface{}{
		"kind": "alien", "name": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind status = %d, want 400", rec.Code)
	}

	// List filtered by kind.
	rec = doJSON(e, http.MethodGet, "/api/counterparties?store_id=1&kind=customer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []counterpartyEntity.Counterparty
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("list = %d, want 1", len(list))
	}

	// Patch contact fields.
	rec = doJSON(e, http.MethodPatch, "/api/counterparties/"+cp.CounterpartyID+"?store_id=1", map[string]interface{}{
		"address": "Mirpur 10, Dhaka",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}
	var updated counterpartyEntity.Counterparty
	json.NewDecoder(rec.Body).Decode(&updated)
	if updated.Address != "Mirpur 10, Dhaka" {
		t.Errorf("address = %q, want Mirpur 10, Dhaka", updated.Address)
	}

	// Cross-store access is a 404.
	rec = doJSON(e, http.MethodGet, "/api/counterparties/"+cp.CounterpartyID+"?store_id=2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-store status = %d, want 404", rec.Code)
	}

	// Delete with no history succeeds.
	rec = doJSON(e, http.MethodDelete, "/api/counterparties/"+cp.CounterpartyID+"?store_id=1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204, body %s", rec.Code, rec.Body)
	}
}

func TestCounterpartyAPI_BalanceAndHistory(t *testing.T) {
	db := apiTestDB(t)
	e := apiTestServer(t, db)
	rowID := seedSaleFixture(t, db)

	rec := doJSON(e, http.MethodPost, "/api/counterparties?store_id=1", map[string]interface{}{
		"kind": "shop", "name": "Karim Traders",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var cp counterpartyEntity.Counterparty
	json.NewDecoder(rec.Body).Decode(&cp)

	// Credit sale against the shop.
	rec = doJSON(e, http.MethodPost, "/api/settlements?store_id=1", map[string]interface{}{
		"kind":         "SALE",
		"counterparty": map[string]interface{}{"kind": "shop", "id": cp.CounterpartyID},
		"lines": []map[string]interface{}{
			{"row_id": rowID, "qty": 4, "unit_price": "3000"},
		},
		"paid_amount": "5000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(e, http.MethodGet, "/api/counterparties/"+cp.CounterpartyID+"/balance?store_id=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance status = %d, body %s", rec.Code, rec.Body)
	}
	var bal struct {
		Balance string `json:"balance"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&bal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bal.Balance != "7000" {
		t.Errorf("balance = %q, want 7000", bal.Balance)
	}

	rec = doJSON(e, http.MethodGet, "/api/counterparties/"+cp.CounterpartyID+"/entries?store_id=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("entries status = %d", rec.Code)
	}
	var entries []map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&entries)
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}

	// Deletion is blocked while ledger history references the shop.
	rec = doJSON(e, http.MethodDelete, "/api/counterparties/"+cp.CounterpartyID+"?store_id=1", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete status = %d, want 409, body %s", rec.Code, rec.Body)
	}
}
