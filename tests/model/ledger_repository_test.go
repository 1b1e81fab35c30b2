package modeltest

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	ledgerEntity "gaspos.GO/model/entity/ledger"
	ledgerRepo "gaspos.GO/model/repository/ledger"
)

func saleEntry(ref counterpartyEntity.Ref, final, paid int64) *ledgerEntity.LedgerEntry {
	kind := ref.Kind
	id := ref.ID
	f := decimal.NewFromInt(final)
	p := decimal.NewFromInt(paid)
	return &ledgerEntity.LedgerEntry{
		StoreID:          1,
		Kind:             ledgerEntity.KindSale,
		CounterpartyKind: &kind,
		CounterpartyID:   &id,
		FinalAmount:      f,
		PaidAmount:       p,
		DueAmount:        f.Sub(p),
		Lines: []ledgerEntity.LedgerLine{
			{Qty: 1, UnitPrice: f},
		},
	}
}

func TestLedgerRepository_Append(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindCustomer, ID: "cust-1"}

	entry := saleEntry(ref, 3000, 2000)
	entry.Lines = []ledgerEntity.LedgerLine{
		{Qty: 2, UnitPrice: decimal.NewFromInt(1000)},
		{Qty: 1, UnitPrice: decimal.NewFromInt(1000)},
	}
	if err := repo.Append(nil, entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.EntryID == "" {
		t.Fatal("EntryID not assigned")
	}

	got, err := repo.GetEntry(1, entry.EntryID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(got.Lines))
	}
	// Positions and totals are normalized on append.
	if got.Lines[0].Position != 0 || got.Lines[1].Position != 1 {
		t.Errorf("positions = %d,%d, want 0,1", got.Lines[0].Position, got.Lines[1].Position)
	}
	if !got.Lines[0].LineTotal.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("line 0 total = %s, want 2000", got.Lines[0].LineTotal)
	}
}

func TestLedgerRepository_Append_Validation(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)

	err := repo.Append(nil, &ledgerEntity.LedgerEntry{StoreID: 1, Kind: ledgerEntity.KindSale})
	if !errors.Is(err, ledgerRepo.ErrEmptyEntry) {
		t.Fatalf("err = %v, want ErrEmptyEntry", err)
	}

	kind := counterpartyEntity.KindCustomer
	err = repo.Append(nil, &ledgerEntity.LedgerEntry{
		StoreID:          1,
		Kind:             ledgerEntity.KindSale,
		CounterpartyKind: &kind,
		Lines:            []ledgerEntity.LedgerLine{{Qty: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	if !errors.Is(err, ledgerRepo.ErrBadRef) {
		t.Fatalf("err = %v, want ErrBadRef", err)
	}
}

func TestLedgerRepository_ReplayBalance_Customer(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindCustomer, ID: "cust-1"}

	// Two credit sales, then a partial due payment.
	if err := repo.Append(nil, saleEntry(ref, 3000, 1000)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(nil, saleEntry(ref, 1500, 1500)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	kind := ref.Kind
	id := ref.ID
	payment := &ledgerEntity.LedgerEntry{
		StoreID:          1,
		Kind:             ledgerEntity.KindDuePayment,
		CounterpartyKind: &kind,
		CounterpartyID:   &id,
		FinalAmount:      decimal.NewFromInt(500),
		PaidAmount:       decimal.NewFromInt(500),
		Lines:            []ledgerEntity.LedgerLine{{Qty: 1, UnitPrice: decimal.NewFromInt(500)}},
	}
	if err := repo.Append(nil, payment); err != nil {
		t.Fatalf("Append payment: %v", err)
	}

	balance, err := repo.ReplayBalance(1, ref)
	if err != nil {
		t.Fatalf("ReplayBalance: %v", err)
	}
	// 2000 due - 500 paid = 1500.
	if !balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("balance = %s, want 1500", balance)
	}

	// Another store's view of the same ref is empty.
	other, err := repo.ReplayBalance(2, ref)
	if err != nil {
		t.Fatalf("ReplayBalance other store: %v", err)
	}
	if !other.IsZero() {
		t.Errorf("other store balance = %s, want 0", other)
	}
}

func TestLedgerRepository_ReplayBalance_PurchaseDue(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindShop, ID: "shop-1"}

	kind := ref.Kind
	id := ref.ID
	purchase := &ledgerEntity.LedgerEntry{
		StoreID:          1,
		Kind:             ledgerEntity.KindPurchase,
		CounterpartyKind: &kind,
		CounterpartyID:   &id,
		FinalAmount:      decimal.NewFromInt(10400),
		PaidAmount:       decimal.NewFromInt(5000),
		DueAmount:        decimal.NewFromInt(5400),
		Lines:            []ledgerEntity.LedgerLine{{Qty: 4, UnitPrice: decimal.NewFromInt(2600)}},
	}
	if err := repo.Append(nil, purchase); err != nil {
		t.Fatalf("Append purchase: %v", err)
	}

	// Purchase due accrues like a sale due.
	balance, err := repo.ReplayBalance(1, ref)
	if err != nil {
		t.Fatalf("ReplayBalance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(5400)) {
		t.Errorf("balance = %s, want 5400", balance)
	}
}

func TestLedgerRepository_ReplayBalance_Staff(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindStaff, ID: "staff-1"}
	kind := ref.Kind
	id := ref.ID

	// Salary accrual 8000, 3000 paid out so far.
	expense := &ledgerEntity.LedgerEntry{
		StoreID:          1,
		Kind:             ledgerEntity.KindExpense,
		CounterpartyKind: &kind,
		CounterpartyID:   &id,
		FinalAmount:      decimal.NewFromInt(8000),
		PaidAmount:       decimal.NewFromInt(3000),
		DueAmount:        decimal.NewFromInt(5000),
		Lines:            []ledgerEntity.LedgerLine{{Qty: 1, UnitPrice: decimal.NewFromInt(8000)}},
	}
	if err := repo.Append(nil, expense); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// A sale against staff does not move salary balance.
	if err := repo.Append(nil, saleEntry(ref, 700, 0)); err != nil {
		t.Fatalf("Append sale: %v", err)
	}

	balance, err := repo.ReplayBalance(1, ref)
	if err != nil {
		t.Fatalf("ReplayBalance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("balance = %s, want 5000", balance)
	}
}

func TestLedgerRepository_OutstandingBalance_Cache(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindShop, ID: "shop-1"}

	if err := repo.Append(nil, saleEntry(ref, 1000, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	balance, err := repo.OutstandingBalance(1, ref)
	if err != nil {
		t.Fatalf("OutstandingBalance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want 1000", balance)
	}

	// Cached value survives a direct write that bypassed invalidation...
	if err := repo.Append(nil, saleEntry(ref, 500, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	stale, err := repo.OutstandingBalance(1, ref)
	if err != nil {
		t.Fatalf("OutstandingBalance: %v", err)
	}
	if !stale.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("cached balance = %s, want stale 1000", stale)
	}

	// ...until invalidated, after which it replays fresh.
	repo.InvalidateBalance(1, ref)
	fresh, err := repo.OutstandingBalance(1, ref)
	if err != nil {
		t.Fatalf("OutstandingBalance: %v", err)
	}
	if !fresh.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("balance = %s, want 1500", fresh)
	}
}

func TestLedgerRepository_ApplyEntry_ReplayConsistency(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindCustomer, ID: "cust-9"}

	for _, pair := range [][2]int64{{3000, 1000}, {2000, 2000}, {800, 0}} {
		if err := repo.Append(nil, saleEntry(ref, pair[0], pair[1])); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := repo.EntriesFor(1, ref)
	if err != nil {
		t.Fatalf("EntriesFor: %v", err)
	}
	folded := decimal.Zero
	for i := range entries {
		folded = ledgerRepo.ApplyEntry(ref.Kind, folded, &entries[i])
	}

	replayed, err := repo.ReplayBalance(1, ref)
	if err != nil {
		t.Fatalf("ReplayBalance: %v", err)
	}
	if !folded.Equal(replayed) {
		t.Errorf("fold = %s, replay = %s", folded, replayed)
	}
}

func TestLedgerRepository_RefsAndStores(t *testing.T) {
	db := testDB(t)
	repo := ledgerRepo.NewLedgerRepository(db)
	ref := counterpartyEntity.Ref{Kind: counterpartyEntity.KindCustomer, ID: "cust-1"}

	if err := repo.Append(nil, saleEntry(ref, 100, 100)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Entry without a counterparty is not a ref.
	anon := &ledgerEntity.LedgerEntry{
		StoreID: 1, Kind: ledgerEntity.KindSale,
		FinalAmount: decimal.NewFromInt(50), PaidAmount: decimal.NewFromInt(50),
		Lines: []ledgerEntity.LedgerLine{{Qty: 1, UnitPrice: decimal.NewFromInt(50)}},
	}
	if err := repo.Append(nil, anon); err != nil {
		t.Fatalf("Append anon: %v", err)
	}

	refs, err := repo.CounterpartyRefs(1)
	if err != nil {
		t.Fatalf("CounterpartyRefs: %v", err)
	}
	if len(refs) != 1 || refs[0] != ref {
		t.Errorf("refs = %v, want [%v]", refs, ref)
	}

	stores, err := repo.StoreIDs()
	if err != nil {
		t.Fatalf("StoreIDs: %v", err)
	}
	if len(stores) != 1 || stores[0] != 1 {
		t.Errorf("stores = %v, want [1]", stores)
	}

	has, err := repo.HasEntriesFor(1, ref)
	if err != nil || !has {
		t.Errorf("HasEntriesFor = %v, %v, want true", has, err)
	}
}
