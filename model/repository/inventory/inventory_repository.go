package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	inventoryEntity "gaspos.GO/model/entity/inventory"
)

var (
	ErrRowNotFound       = errors.New("inventory row not found")
	ErrAccessoryNotFound = errors.New("accessory item not found")
	ErrNegativeStock     = errors.New("stock count would go negative")
	ErrDefectInvariant   = errors.New("defected count exceeds total stock")
	ErrDamagedInvariant  = errors.New("damaged count exceeds stock")
	ErrNegativePrice     = errors.New("price must not be negative")
	// ErrConflict means the guarded write lost a race; callers retry with fresh reads.
	ErrConflict = errors.New("concurrent inventory update")
)

// InvariantError ties a stock-invariant failure to the row or accessory that
// caused it, so callers can surface the offending line.
type InvariantError struct {
	RowID       uint
	AccessoryID uint
	Err         error
	Detail      string
}

func (e *InvariantError) Error() string {
	if e.AccessoryID != 0 {
		return fmt.Sprintf("accessory %d: %s: %s", e.AccessoryID, e.Err, e.Detail)
	}
	return fmt.Sprintf("row %d: %s: %s", e.RowID, e.Err, e.Detail)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// CountsDelta carries signed adjustments per pool. Zero fields are no-ops.
type CountsDelta struct {
	Full     int64 `json:"full" mapstructure:"full"`
	Empty    int64 `json:"empty" mapstructure:"empty"`
	Defected int64 `json:"defected" mapstructure:"defected"`
}

// PriceUpdate is a partial price snapshot update; nil fields are untouched.
type PriceUpdate struct {
	BuyPackaged  *decimal.Decimal `json:"buy_packaged" mapstructure:"buy_packaged"`
	SellPackaged *decimal.Decimal `json:"sell_packaged" mapstructure:"sell_packaged"`
	BuyRefill    *decimal.Decimal `json:"buy_refill" mapstructure:"buy_refill"`
	SellRefill   *decimal.Decimal `json:"sell_refill" mapstructure:"sell_refill"`
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AdjustCounts applies signed deltas to one row as a single read-validate-write
// step. All fields apply or none do. The guarded update checks the version read
// at validation time; a lost race returns ErrConflict without touching the row.
func (r *InventoryRepository) AdjustCounts(tx *gorm.DB, rowID uint, d CountsDelta) (inventoryEntity.Counts, error) {
	if tx == nil {
		tx = r.db
	}

	var row inventoryEntity.InventoryRow
	if err := tx.First(&row, "row_id = ?", rowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventoryEntity.Counts{}, fmt.Errorf("%w: row %d", ErrRowNotFound, rowID)
		}
		return inventoryEntity.Counts{}, fmt.Errorf("read row %d: %w", rowID, err)
	}

	full := row.FullCount + d.Full
	empty := row.EmptyCount + d.Empty
	defected := row.DefectedCount + d.Defected

	if full < 0 || empty < 0 || defected < 0 {
		return inventoryEntity.Counts{}, &InvariantError{
			RowID: rowID,
			Err:   ErrNegativeStock,
			Detail: fmt.Sprintf("full %d, empty %d, defected %d after delta {%d,%d,%d}",
				full, empty, defected, d.Full, d.Empty, d.Defected),
		}
	}
	if defected > full+empty {
		return inventoryEntity.Counts{}, &InvariantError{
			RowID:  rowID,
			Err:    ErrDefectInvariant,
			Detail: fmt.Sprintf("defected %d > full %d + empty %d", defected, full, empty),
		}
	}

	res := tx.Model(&inventoryEntity.InventoryRow{}).
		Where("row_id = ? AND version = ?", rowID, row.Version).
		Updates(map[string]interface{}{
			"full_count":     full,
			"empty_count":    empty,
			"defected_count": defected,
			"version":        row.Version + 1,
		})
	if res.Error != nil {
		return inventoryEntity.Counts{}, fmt.Errorf("update row %d: %w", rowID, res.Error)
	}
	if res.RowsAffected == 0 {
		return inventoryEntity.Counts{}, fmt.Errorf("%w: row %d", ErrConflict, rowID)
	}

	return inventoryEntity.Counts{Full: full, Empty: empty, Defected: defected}, nil
}

// MarkDefected flags qty existing units unusable. Only the defected pool moves;
// the defect ceiling is re-validated against current full+empty.
func (r *InventoryRepository) MarkDefected(tx *gorm.DB, rowID uint, qty int64) (inventoryEntity.Counts, error) {
	return r.AdjustCounts(tx, rowID, CountsDelta{Defected: qty})
}

// UnmarkDefected clears qty units from the defected pool.
func (r *InventoryRepository) UnmarkDefected(tx *gorm.DB, rowID uint, qty int64) (inventoryEntity.Counts, error) {
	return r.AdjustCounts(tx, rowID, CountsDelta{Defected: -qty})
}

// SetPrices partially updates a row's price snapshot. Values must be >= 0;
// counts and version are untouched.
func (r *InventoryRepository) SetPrices(storeID, rowID uint, up PriceUpdate) (*inventoryEntity.InventoryRow, error) {
	fields := map[string]interface{}{}
	for col, v := range map[string]*decimal.Decimal{
		"buy_packaged":  up.BuyPackaged,
		"sell_packaged": up.SellPackaged,
		"buy_refill":    up.BuyRefill,
		"sell_refill":   up.SellRefill,
	} {
		if v == nil {
			continue
		}
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: %s = %s", ErrNegativePrice, col, v)
		}
		fields[col] = *v
	}

	if len(fields) > 0 {
		res := r.db.Model(&inventoryEntity.InventoryRow{}).
			Where("row_id = ? AND store_id = ?", rowID, storeID).
			Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update prices for row %d: %w", rowID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: row %d", ErrRowNotFound, rowID)
		}
	}
	return r.GetRow(storeID, rowID)
}

// GetRow returns one row scoped to its store.
func (r *InventoryRepository) GetRow(storeID, rowID uint) (*inventoryEntity.InventoryRow, error) {
	var row inventoryEntity.InventoryRow
	err := r.db.Where("row_id = ? AND store_id = ?", rowID, storeID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: row %d", ErrRowNotFound, rowID)
		}
		return nil, err
	}
	return &row, nil
}

// ListRows returns all rows of a store ordered by brand and category.
func (r *InventoryRepository) ListRows(storeID uint) ([]inventoryEntity.InventoryRow, error) {
	var rows []inventoryEntity.InventoryRow
	err := r.db.Where("store_id = ?", storeID).
		Order("brand_id, category, variant_digest").
		Find(&rows).Error
	return rows, err
}

// --- accessory items (single pool + damaged subset) ---

// AdjustAccessory mirrors AdjustCounts for the accessory single-pool model.
func (r *InventoryRepository) AdjustAccessory(tx *gorm.DB, accessoryID uint, deltaStock, deltaDamaged int64) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	var item inventoryEntity.AccessoryItem
	if err := tx.First(&item, "accessory_id = ?", accessoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: accessory %d", ErrAccessoryNotFound, accessoryID)
		}
		return 0, fmt.Errorf("read accessory %d: %w", accessoryID, err)
	}

	stock := item.Stock + deltaStock
	damaged := item.DamagedStock + deltaDamaged
	if stock < 0 || damaged < 0 {
		return 0, &InvariantError{
			AccessoryID: accessoryID,
			Err:         ErrNegativeStock,
			Detail:      fmt.Sprintf("stock %d, damaged %d after delta {%d,%d}", stock, damaged, deltaStock, deltaDamaged),
		}
	}
	if damaged > stock {
		return 0, &InvariantError{
			AccessoryID: accessoryID,
			Err:         ErrDamagedInvariant,
			Detail:      fmt.Sprintf("damaged %d > stock %d", damaged, stock),
		}
	}

	res := tx.Model(&inventoryEntity.AccessoryItem{}).
		Where("accessory_id = ? AND version = ?", accessoryID, item.Version).
		Updates(map[string]interface{}{
			"stock":         stock,
			"damaged_stock": damaged,
			"version":       item.Version + 1,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("update accessory %d: %w", accessoryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: accessory %d", ErrConflict, accessoryID)
	}
	return stock, nil
}

// CreateAccessory registers a new accessory item for a store.
func (r *InventoryRepository) CreateAccessory(item *inventoryEntity.AccessoryItem) error {
	if item.Stock < 0 || item.DamagedStock < 0 || item.DamagedStock > item.Stock {
		return &InvariantError{
			AccessoryID: item.AccessoryID,
			Err:         ErrDamagedInvariant,
			Detail:      fmt.Sprintf("stock %d, damaged %d", item.Stock, item.DamagedStock),
		}
	}
	if item.BuyPrice.IsNegative() || item.SellPrice.IsNegative() {
		return ErrNegativePrice
	}
	return r.db.Create(item).Error
}

// GetAccessory returns one accessory scoped to its store.
func (r *InventoryRepository) GetAccessory(storeID, accessoryID uint) (*inventoryEntity.AccessoryItem, error) {
	var item inventoryEntity.AccessoryItem
	err := r.db.Where("accessory_id = ? AND store_id = ?", accessoryID, storeID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: accessory %d", ErrAccessoryNotFound, accessoryID)
		}
		return nil, err
	}
	return &item, nil
}

// ListAccessories returns all accessory items of a store.
func (r *InventoryRepository) ListAccessories(storeID uint) ([]inventoryEntity.AccessoryItem, error) {
	var items []inventoryEntity.AccessoryItem
	err := r.db.Where("store_id = ?", storeID).Order("name").Find(&items).Error
	return items, err
}

// SetAccessoryPrices partially updates an accessory's prices.
func (r *InventoryRepository) SetAccessoryPrices(storeID, accessoryID uint, buy, sell *decimal.Decimal) (*inventoryEntity.AccessoryItem, error) {
	fields := map[string]interface{}{}
	if buy != nil {
		if buy.IsNegative() {
			return nil, fmt.Errorf("%w: buy_price = %s", ErrNegativePrice, buy)
		}
		fields["buy_price"] = *buy
	}
	if sell != nil {
		if sell.IsNegative() {
			return nil, fmt.Errorf("%w: sell_price = %s", ErrNegativePrice, sell)
		}
		fields["sell_price"] = *sell
	}
	if len(fields) > 0 {
		res := r.db.Model(&inventoryEntity.AccessoryItem{}).
			Where("accessory_id = ? AND store_id = ?", accessoryID, storeID).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: accessory %d", ErrAccessoryNotFound, accessoryID)
		}
	}
	return r.GetAccessory(storeID, accessoryID)
}
