package counterparty

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	counterpartyEntity "gaspos.GO/model/entity/counterparty"
	ledgerEntity "gaspos.GO/model/entity/ledger"
)

var (
	ErrNotFound    = errors.New("counterparty not found")
	ErrInvalidKind = errors.New("unknown counterparty kind")
	ErrNameBlank   = errors.New("counterparty name is required")
	// ErrReferenced blocks deletion while ledger entries reference the record.
	ErrReferenced = errors.New("counterparty has ledger history")
)

type CounterpartyRepository struct {
	db *gorm.DB
}

func NewCounterpartyRepository(db *gorm.DB) *CounterpartyRepository {
	return &CounterpartyRepository{db: db}
}

// Create registers a counterparty for a store. The ID is assigned here.
func (r *CounterpartyRepository) Create(cp *counterpartyEntity.Counterparty) error {
	if !counterpartyEntity.ValidKind(cp.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, cp.Kind)
	}
	if cp.Name == "" {
		return ErrNameBlank
	}
	if cp.CounterpartyID == "" {
		cp.CounterpartyID = uuid.NewString()
	}
	return r.db.Create(cp).Error
}

// Get returns one counterparty scoped to its store.
func (r *CounterpartyRepository) Get(storeID uint, id string) (*counterpartyEntity.Counterparty, error) {
	var cp counterpartyEntity.Counterparty
	err := r.db.Where("counterparty_id = ? AND store_id = ?", id, storeID).First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &cp, nil
}

// List returns the store's counterparties, optionally filtered by kind.
func (r *CounterpartyRepository) List(storeID uint, kind counterpartyEntity.Kind) ([]counterpartyEntity.Counterparty, error) {
	q := r.db.Where("store_id = ?", storeID)
	if kind != "" {
		if !counterpartyEntity.ValidKind(kind) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
		}
		q = q.Where("kind = ?", kind)
	}
	var cps []counterpartyEntity.Counterparty
	err := q.Order("name").Find(&cps).Error
	return cps, err
}

// Update applies a partial contact-field update. Kind and store are fixed.
func (r *CounterpartyRepository) Update(storeID uint, id string, fields map[string]interface{}) (*counterpartyEntity.Counterparty, error) {
	allowed := map[string]bool{"name": true, "phone": true, "address": true, "media_url": true}
	upd := map[string]interface{}{}
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if name, ok := upd["name"]; ok && name == "" {
		return nil, ErrNameBlank
	}
	if len(upd) > 0 {
		res := r.db.Model(&counterpartyEntity.Counterparty{}).
			Where("counterparty_id = ? AND store_id = ?", id, storeID).
			Updates(upd)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	return r.Get(storeID, id)
}

// Delete soft-deletes a counterparty. Rejected while any ledger entry
// references it; history must stay resolvable.
func (r *CounterpartyRepository) Delete(storeID uint, id string) error {
	cp, err := r.Get(storeID, id)
	if err != nil {
		return err
	}

	var n int64
	err = r.db.Model(&ledgerEntity.LedgerEntry{}).
		Where("store_id = ? AND counterparty_kind = ? AND counterparty_id = ?", storeID, cp.Kind, cp.CounterpartyID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d entries", ErrReferenced, n)
	}

	return r.db.Delete(&counterpartyEntity.Counterparty{}, "counterparty_id = ?", id).Error
}
