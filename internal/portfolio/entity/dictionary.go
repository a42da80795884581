package entity

// Dictionary type names the engine validates against. Created at startup if
// missing, extended only by admins.
const (
	DictTypeService         = "service"
	DictTypeStage           = "stage"
	DictTypeCostType        = "cost_type"
	DictTypeCostStatus      = "cost_status"
	DictTypeRevenueStatus   = "revenue_status"
	DictTypeBusinessSegment = "business_segment"
	DictTypePaymentType     = "payment_type"
)

// DictTypeNames lists every known dictionary type in bootstrap order.
var DictTypeNames = []string{
	DictTypeService,
	DictTypeStage,
	DictTypeCostType,
	DictTypeCostStatus,
	DictTypeRevenueStatus,
	DictTypeBusinessSegment,
	DictTypePaymentType,
}

// DictionaryType is a named category of reference values.
type DictionaryType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

func (DictionaryType) TableName() string {
	return "dictionary_types"
}

// DictionaryItem is one allowed value within a category. Probability is set
// only for items of the "stage" type and carries the deal-closure likelihood.
type DictionaryItem struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	TypeID      uint     `json:"type_id" gorm:"not null;index:idx_dict_item_type"`
	Value       string   `json:"value" gorm:"size:255;not null"`
	Probability *float64 `json:"probability"`
}

func (DictionaryItem) TableName() string {
	return "dictionary_items"
}
