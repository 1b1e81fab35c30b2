package settlement

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	inventoryEntity "gaspos.GO/model/entity/inventory"
	ledgerEntity "gaspos.GO/model/entity/ledger"
	catalogRepo "gaspos.GO/model/repository/catalog"
	counterpartyRepo "gaspos.GO/model/repository/counterparty"
	inventoryRepo "gaspos.GO/model/repository/inventory"
	ledgerRepo "gaspos.GO/model/repository/ledger"
)

// maxAttempts bounds retries when the per-row guarded write loses a race.
// Retries always restart from fresh reads; nothing is retried once any write
// has committed.
const maxAttempts = 3

// RowRef names an inventory row by its resolution tuple instead of its ID,
// creating the row zeroed on first reference.
type RowRef struct {
	BrandID    uint                   `json:"brand_id"`
	Category   string                 `json:"category"`
	VariantKey map[string]interface{} `json:"variant_key"`
}

// Line is one ordered item of a settlement request. Exactly one of RowID,
// Row, or AccessoryID names the target.
type Line struct {
	RowID       *uint   `json:"row_id,omitempty"`
	Row         *RowRef `json:"row,omitempty"`
	AccessoryID *uint   `json:"accessory_id,omitempty"`

	SaleMode  string          `json:"sale_mode,omitempty"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Request is a full settlement: kind, optional counterparty, ordered lines,
// and the amount paid at the counter. DUE_PAYMENT and EXPENSE omit lines and
// carry Amount instead; a single synthetic line records the settlement.
type Request struct {
	Kind         string                   `json:"kind"`
	Counterparty *counterpartyEntity.Ref  `json:"counterparty,omitempty"`
	Lines        []Line                   `json:"lines"`
	PaidAmount   decimal.Decimal          `json:"paid_amount"`
	Amount       *decimal.Decimal         `json:"amount,omitempty"`
	ActorID      uint                     `json:"actor_id,omitempty"`
	Note         string                   `json:"note,omitempty"`
}

// UpdatedRow is the post-transaction snapshot of one touched row.
type UpdatedRow struct {
	RowID  uint                   `json:"row_id"`
	Counts inventoryEntity.Counts `json:"counts"`
}

// UpdatedAccessory is the post-transaction stock of one touched accessory.
type UpdatedAccessory struct {
	AccessoryID uint  `json:"accessory_id"`
	Stock       int64 `json:"stock"`
}

// Result reports a committed settlement for immediate UI reflection.
type Result struct {
	EntryID            string             `json:"entry_id"`
	FinalAmount        decimal.Decimal    `json:"final_amount"`
	PaidAmount         decimal.Decimal    `json:"paid_amount"`
	DueAmount          decimal.Decimal    `json:"due_amount"`
	UpdatedRows        []UpdatedRow       `json:"updated_rows"`
	UpdatedAccessories []UpdatedAccessory `json:"updated_accessories"`
}

// Service is the settlement coordinator: it validates a multi-line request,
// applies every stock delta and the ledger append as one transaction, and
// rejects the whole settlement on any invariant failure. A request is either
// committed in full or leaves no persisted effect.
type Service struct {
	db             *gorm.DB
	catalog        *catalogRepo.CatalogRepository
	inventory      *inventoryRepo.InventoryRepository
	ledger         *ledgerRepo.LedgerRepository
	counterparties *counterpartyRepo.CounterpartyRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:             db,
		catalog:        catalogRepo.NewCatalogRepository(db),
		inventory:      inventoryRepo.NewInventoryRepository(db),
		ledger:         ledgerRepo.NewLedgerRepository(db),
		counterparties: counterpartyRepo.NewCounterpartyRepository(db),
	}
}

// Ledger exposes the ledger repository for read paths sharing this service.
func (s *Service) Ledger() *ledgerRepo.LedgerRepository { return s.ledger }

// resolvedLine pairs a request line with its resolved target and stock delta.
type resolvedLine struct {
	line        Line
	mode        string
	rowID       uint
	accessoryID uint
	delta       inventoryRepo.CountsDelta
	accDelta    int64
}

// Settle validates and applies one settlement. The apply step retries a small
// bounded number of times on per-row write races (always from fresh reads);
// every other failure is surfaced without retry.
func (s *Service) Settle(storeID uint, req Request) (*Result, error) {
	if err := s.validate(storeID, &req); err != nil {
		return nil, err
	}

	if req.Kind == ledgerEntity.KindDuePayment || req.Kind == ledgerEntity.KindExpense {
		return s.settleAmountOnly(storeID, req)
	}

	resolved, err := s.resolveLines(storeID, req)
	if err != nil {
		return nil, err
	}

	final := decimal.Zero
	for _, rl := range resolved {
		final = final.Add(rl.line.UnitPrice.Mul(decimal.NewFromInt(rl.line.Qty)))
	}
	due := final.Sub(req.PaidAmount)
	if req.Kind == ledgerEntity.KindSale && due.IsNegative() {
		return nil, reject(-1, ErrNegativeDue, fmt.Sprintf("paid %s exceeds final %s", req.PaidAmount, final))
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := s.apply(storeID, req, resolved, final, due)
		if err == nil {
			if req.Counterparty != nil {
				s.ledger.InvalidateBalance(storeID, *req.Counterparty)
			}
			return res, nil
		}
		if !errors.Is(err, inventoryRepo.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrTransient, lastErr)
}

// apply runs one attempt of the atomic apply+append step. Any error rolls the
// whole transaction back; no partial stock change or ledger entry survives.
func (s *Service) apply(storeID uint, req Request, resolved []resolvedLine, final, due decimal.Decimal) (*Result, error) {
	result := &Result{FinalAmount: final, PaidAmount: req.PaidAmount, DueAmount: due}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result.UpdatedRows = result.UpdatedRows[:0]
		result.UpdatedAccessories = result.UpdatedAccessories[:0]

		entry := s.buildEntry(storeID, req, final, due)

		for i, rl := range resolved {
			if rl.accessoryID != 0 {
				stock, err := s.inventory.AdjustAccessory(tx, rl.accessoryID, rl.accDelta, 0)
				if err != nil {
					return lineErr(i, err)
				}
				result.UpdatedAccessories = append(result.UpdatedAccessories, UpdatedAccessory{
					AccessoryID: rl.accessoryID, Stock: stock,
				})
				accID := rl.accessoryID
				entry.Lines = append(entry.Lines, ledgerEntity.LedgerLine{
					AccessoryID: &accID, Qty: rl.line.Qty, UnitPrice: rl.line.UnitPrice,
				})
				continue
			}

			counts, err := s.inventory.AdjustCounts(tx, rl.rowID, rl.delta)
			if err != nil {
				return lineErr(i, err)
			}
			result.UpdatedRows = append(result.UpdatedRows, UpdatedRow{RowID: rl.rowID, Counts: counts})
			rowID := rl.rowID
			entry.Lines = append(entry.Lines, ledgerEntity.LedgerLine{
				RowID: &rowID, SaleMode: rl.mode, Qty: rl.line.Qty, UnitPrice: rl.line.UnitPrice,
			})
		}

		if err := s.ledger.Append(tx, entry); err != nil {
			return err
		}
		result.EntryID = entry.EntryID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleAmountOnly posts a DUE_PAYMENT or EXPENSE entry: no stock movement,
// one synthetic line carrying the settlement amount.
func (s *Service) settleAmountOnly(storeID uint, req Request) (*Result, error) {
	amount := *req.Amount
	paid := req.PaidAmount
	if req.Kind == ledgerEntity.KindDuePayment && paid.IsZero() {
		// A due payment is paid by definition.
		paid = amount
	}

	entry := s.buildEntry(storeID, req, amount, amount.Sub(paid))
	entry.PaidAmount = paid
	entry.Lines = []ledgerEntity.LedgerLine{{Qty: 1, UnitPrice: amount}}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.ledger.Append(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	if req.Counterparty != nil {
		s.ledger.InvalidateBalance(storeID, *req.Counterparty)
	}
	return &Result{
		EntryID:     entry.EntryID,
		FinalAmount: entry.FinalAmount,
		PaidAmount:  entry.PaidAmount,
		DueAmount:   entry.DueAmount,
	}, nil
}

func (s *Service) buildEntry(storeID uint, req Request, final, due decimal.Decimal) *ledgerEntity.LedgerEntry {
	entry := &ledgerEntity.LedgerEntry{
		StoreID:     storeID,
		Kind:        req.Kind,
		FinalAmount: final,
		PaidAmount:  req.PaidAmount,
		DueAmount:   due,
		ActorID:     req.ActorID,
	}
	if req.Counterparty != nil {
		kind := req.Counterparty.Kind
		id := req.Counterparty.ID
		entry.CounterpartyKind = &kind
		entry.CounterpartyID = &id
	}
	if req.Note != "" {
		raw, _ := json.Marshal(map[string]string{"note": req.Note})
		entry.Metadata = datatypes.JSON(raw)
	}
	return entry
}

// validate checks request shape before anything touches storage.
func (s *Service) validate(storeID uint, req *Request) error {
	if !ledgerEntity.ValidKind(req.Kind) {
		return reject(-1, ErrBadKind, req.Kind)
	}
	if req.PaidAmount.IsNegative() {
		return reject(-1, ErrNegativePaid, req.PaidAmount.String())
	}

	if req.Counterparty != nil {
		if !counterpartyEntity.ValidKind(req.Counterparty.Kind) || req.Counterparty.ID == "" {
			return reject(-1, counterpartyRepo.ErrInvalidKind, string(req.Counterparty.Kind))
		}
		if _, err := s.counterparties.Get(storeID, req.Counterparty.ID); err != nil {
			return err
		}
	}

	switch req.Kind {
	case ledgerEntity.KindDuePayment, ledgerEntity.KindExpense:
		if len(req.Lines) > 0 {
			return reject(0, ErrStockLineForbidden, "")
		}
		if req.Amount == nil || !req.Amount.IsPositive() {
			return reject(-1, ErrAmountRequired, "")
		}
		if req.Kind == ledgerEntity.KindDuePayment {
			if req.Counterparty == nil {
				return reject(-1, ErrCounterpartyRequired, "due payment needs a debtor")
			}
			if req.Counterparty.Kind == counterpartyEntity.KindStaff {
				return reject(-1, ErrCounterpartyKind, "staff settle through salary expenses")
			}
		}
		return nil
	}

	if len(req.Lines) == 0 {
		return reject(-1, ErrEmptyLines, "")
	}
	for i, line := range req.Lines {
		targets := 0
		if line.RowID != nil {
			targets++
		}
		if line.Row != nil {
			targets++
		}
		if line.AccessoryID != nil {
			targets++
		}
		if targets != 1 {
			return reject(i, ErrLineTarget, fmt.Sprintf("%d targets", targets))
		}
		if line.Qty <= 0 {
			return reject(i, ErrBadQty, fmt.Sprintf("qty %d", line.Qty))
		}
		if line.UnitPrice.IsNegative() {
			return reject(i, ErrNegativePrice, line.UnitPrice.String())
		}
	}
	return nil
}

// resolveLines maps every line to a concrete row or accessory and derives its
// stock delta. Tuple-named rows are resolved (and lazily created) through the
// catalog binding, which enforces the brand subscription.
func (s *Service) resolveLines(storeID uint, req Request) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(req.Lines))
	for i, line := range req.Lines {
		rl := resolvedLine{line: line}

		switch {
		case line.AccessoryID != nil:
			item, err := s.inventory.GetAccessory(storeID, *line.AccessoryID)
			if err != nil {
				return nil, lineErr(i, err)
			}
			rl.accessoryID = item.AccessoryID
			d, err := accessoryDelta(req.Kind, line.Qty)
			if err != nil {
				return nil, lineErr(i, err)
			}
			rl.accDelta = d

		case line.Row != nil:
			mode, err := normalizeMode(line.Row.Category, line.SaleMode)
			if err != nil {
				return nil, lineErr(i, err)
			}
			row, err := s.catalog.ResolveRow(storeID, line.Row.BrandID, line.Row.Category, line.Row.VariantKey)
			if err != nil {
				return nil, lineErr(i, err)
			}
			rl.rowID = row.RowID
			rl.mode = mode
			rl.delta, err = rowDelta(req.Kind, mode, line.Qty)
			if err != nil {
				return nil, lineErr(i, err)
			}

		default:
			row, err := s.inventory.GetRow(storeID, *line.RowID)
			if err != nil {
				return nil, lineErr(i, err)
			}
			mode, err := normalizeMode(row.Category, line.SaleMode)
			if err != nil {
				return nil, lineErr(i, err)
			}
			rl.rowID = row.RowID
			rl.mode = mode
			rl.delta, err = rowDelta(req.Kind, mode, line.Qty)
			if err != nil {
				return nil, lineErr(i, err)
			}
		}
		resolved = append(resolved, rl)
	}
	return resolved, nil
}

func lineErr(i int, err error) error {
	return fmt.Errorf("line %d: %w", i, err)
}
