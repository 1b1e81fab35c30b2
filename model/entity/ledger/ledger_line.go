package ledger

import "github.com/shopspring/decimal"

// Sale modes for cylinder-category lines. Packaged moves the vessel with the
// customer; refill exchanges gas only. Stoves and regulators are always
// packaged.
const (
	ModePackaged = "packaged"
	ModeRefill   = "refill"
)

// LedgerLine is one ordered item of a ledger entry, naming either an
// inventory row or an accessory item. Immutable alongside its entry.
type LedgerLine struct {
	LineID   uint   `gorm:"column:line_id;primaryKey;autoIncrement" json:"line_id"`
	EntryID  string `gorm:"column:entry_id;type:varchar(36);index;not null" json:"entry_id"`
	Position int    `gorm:"column:position;not null" json:"position"`

	RowID       *uint `gorm:"column:row_id;index" json:"row_id,omitempty"`
	AccessoryID *uint `gorm:"column:accessory_id;index" json:"accessory_id,omitempty"`

	SaleMode  string          `gorm:"column:sale_mode;type:varchar(16)" json:"sale_mode,omitempty"`
	Qty       int64           `gorm:"column:qty;not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(20,6);not null;default:0" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:decimal(20,6);not null;default:0" json:"line_total"`
}

func (LedgerLine) TableName() string {
	return "ledger_line"
}
