package settlement

import (
	"fmt"

	inventoryEntity "gaspos.GO/model/entity/inventory"
	ledgerEntity "gaspos.GO/model/entity/ledger"
	inventoryRepo "gaspos.GO/model/repository/inventory"
)

// normalizeMode fills the default sale mode and rejects refill on categories
// without a refill concept (only cylinders exchange gas).
func normalizeMode(category, mode string) (string, error) {
	if mode == "" {
		mode = ledgerEntity.ModePackaged
	}
	switch mode {
	case ledgerEntity.ModePackaged:
		return mode, nil
	case ledgerEntity.ModeRefill:
		if category != inventoryEntity.CategoryCylinder {
			return "", fmt.Errorf("%w: refill on %s", ErrBadMode, category)
		}
		return mode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadMode, mode)
}

// rowDelta derives the stock movement of one inventory-row line.
//
// Packaged sale: the vessel leaves with the customer, full drops.
// Refill sale: gas is dispensed from a full cylinder and the emptied vessel
// returns to the empty pool, so full drops and empty rises by the same qty.
// Purchase restocks full; a refill purchase sends empties out and brings
// fulls back. Returns mirror the corresponding sale movement.
func rowDelta(kind, mode string, qty int64) (inventoryRepo.CountsDelta, error) {
	switch kind {
	case ledgerEntity.KindSale:
		if mode == ledgerEntity.ModeRefill {
			return inventoryRepo.CountsDelta{Full: -qty, Empty: qty}, nil
		}
		return inventoryRepo.CountsDelta{Full: -qty}, nil
	case ledgerEntity.KindReturn:
		if mode == ledgerEntity.ModeRefill {
			return inventoryRepo.CountsDelta{Full: qty, Empty: -qty}, nil
		}
		return inventoryRepo.CountsDelta{Full: qty}, nil
	case ledgerEntity.KindPurchase:
		if mode == ledgerEntity.ModeRefill {
			return inventoryRepo.CountsDelta{Full: qty, Empty: -qty}, nil
		}
		return inventoryRepo.CountsDelta{Full: qty}, nil
	}
	return inventoryRepo.CountsDelta{}, fmt.Errorf("%w: %q has no stock movement", ErrBadKind, kind)
}

// accessoryDelta derives the single-pool movement of an accessory line.
func accessoryDelta(kind string, qty int64) (int64, error) {
	switch kind {
	case ledgerEntity.KindSale:
		return -qty, nil
	case ledgerEntity.KindReturn, ledgerEntity.KindPurchase:
		return qty, nil
	}
	return 0, fmt.Errorf("%w: %q has no stock movement", ErrBadKind, kind)
}
