package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogEntity "gaspos.GO/model/entity/catalog"
	inventoryEntity "gaspos.GO/model/entity/inventory"
)

var (
	ErrBrandNotFound      = errors.New("brand not found")
	ErrBrandNotSubscribed = errors.New("brand not subscribed by store")
	ErrBadCategory        = errors.New("unknown inventory category")
	ErrBadVariantKey      = errors.New("invalid variant key")
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// VariantDigest canonicalizes a variant key into the string used for the
// unique row index: keys sorted, lowercased, joined as k=v pairs. The same
// logical key always digests identically regardless of field order.
func VariantDigest(key map[string]interface{}) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: empty", ErrBadVariantKey)
	}
	parts := make([]string, 0, len(key))
	for k, v := range key {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return "", fmt.Errorf("%w: blank field name", ErrBadVariantKey)
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return strings.ToLower(strings.Join(parts, "|")), nil
}

// ResolveRow maps (store, brand, category, variant key) to its inventory row,
// creating the row zeroed on first reference. Deterministic and idempotent:
// the same inputs always resolve to the same row. Requires an active brand
// subscription.
func (r *CatalogRepository) ResolveRow(storeID, brandID uint, category string, variantKey map[string]interface{}) (*inventoryEntity.InventoryRow, error) {
	if !inventoryEntity.ValidCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrBadCategory, category)
	}
	subscribed, err := r.IsSubscribed(storeID, brandID)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		return nil, fmt.Errorf("%w: store %d, brand %d", ErrBrandNotSubscribed, storeID, brandID)
	}

	digest, err := VariantDigest(variantKey)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(variantKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadVariantKey, err)
	}

	var row inventoryEntity.InventoryRow
	err = r.db.Where(inventoryEntity.InventoryRow{
		StoreID:       storeID,
		BrandID:       brandID,
		Category:      category,
		VariantDigest: digest,
	}).Attrs(inventoryEntity.InventoryRow{
		VariantKey: datatypes.JSON(raw),
	}).FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("resolve row: %w", err)
	}
	return &row, nil
}

// IsSubscribed reports whether the store has an active subscription for brand.
func (r *CatalogRepository) IsSubscribed(storeID, brandID uint) (bool, error) {
	var n int64
	err := r.db.Model(&catalogEntity.BrandSubscription{}).
		Where("store_id = ? AND brand_id = ? AND active = ?", storeID, brandID, true).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReplaceSubscriptions reconciles the store's active brand set against
// desired: missing brands are activated (creating the subscription record on
// first activation), brands no longer desired are deactivated. Deactivation
// never touches inventory rows; it only hides the brand from selection.
func (r *CatalogRepository) ReplaceSubscriptions(storeID uint, desiredBrandIDs []uint) error {
	desired := make(map[uint]bool, len(desiredBrandIDs))
	for _, id := range desiredBrandIDs {
		desired[id] = true
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var current []catalogEntity.BrandSubscription
		if err := tx.Where("store_id = ?", storeID).Find(&current).Error; err != nil {
			return err
		}

		have := make(map[uint]*catalogEntity.BrandSubscription, len(current))
		for i := range current {
			have[current[i].BrandID] = &current[i]
		}

		// Deactivate brands dropped from the desired set.
		for _, sub := range current {
			if sub.Active && !desired[sub.BrandID] {
				err := tx.Model(&catalogEntity.BrandSubscription{}).
					Where("subscription_id = ?", sub.SubscriptionID).
					Update("active", false).Error
				if err != nil {
					return err
				}
			}
		}

		// Activate desired brands, creating subscriptions on first activation.
		for brandID := range desired {
			if sub, ok := have[brandID]; ok {
				if !sub.Active {
					err := tx.Model(&catalogEntity.BrandSubscription{}).
						Where("subscription_id = ?", sub.SubscriptionID).
						Update("active", true).Error
					if err != nil {
						return err
					}
				}
				continue
			}

			var brand catalogEntity.Brand
			if err := tx.First(&brand, "brand_id = ?", brandID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: brand %d", ErrBrandNotFound, brandID)
				}
				return err
			}
			if brand.StoreID != nil && *brand.StoreID != storeID {
				return fmt.Errorf("%w: brand %d belongs to another store", ErrBrandNotFound, brandID)
			}

			sub := catalogEntity.BrandSubscription{
				StoreID:     storeID,
				BrandID:     brandID,
				BrandName:   brand.Name,
				BrandOrigin: brand.Origin,
				Active:      true,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSubscriptions returns the store's active subscriptions.
func (r *CatalogRepository) ListSubscriptions(storeID uint) ([]catalogEntity.BrandSubscription, error) {
	var subs []catalogEntity.BrandSubscription
	err := r.db.Where("store_id = ? AND active = ?", storeID, true).
		Order("brand_name").Find(&subs).Error
	return subs, err
}

// CreateBrand registers a store-owned custom brand. Global brands are seeded,
// never created through the API.
func (r *CatalogRepository) CreateBrand(storeID uint, brand *catalogEntity.Brand) error {
	if strings.TrimSpace(brand.Name) == "" {
		return errors.New("brand name required")
	}
	brand.Origin = catalogEntity.OriginCustom
	brand.StoreID = &storeID
	return r.db.Create(brand).Error
}

// ListBrands returns brands visible to a store: global plus its own custom ones.
func (r *CatalogRepository) ListBrands(storeID uint) ([]catalogEntity.Brand, error) {
	var brands []catalogEntity.Brand
	err := r.db.Where("store_id IS NULL OR store_id = ?", storeID).
		Order("name").Find(&brands).Error
	return brands, err
}
