package model

// transitions maps a status to the statuses reachable from it in one step.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "PERCENTAGE"
	AdjustmentFixed      AdjustmentType = "FIXED"
)

// Valid reports whether t is a known adjustment type. The empty value means "none".
func (t AdjustmentType) Valid() bool {
	switch t {
	case "", AdjustmentPercentage, AdjustmentFixed:
		return true
	}
	return false
}

type ItemType string

const (
	ItemTypeMaterial  ItemType = "MATERIAL"
	ItemTypeEquipment ItemType = "EQUIPMENT"
	ItemTypeOther     ItemType = "OTHER"
	ItemTypeLabor     ItemType = "LABOR"
	ItemTypeService   ItemType = "SERVICE"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeMaterial, ItemTypeEquipment, ItemTypeOther, ItemTypeLabor, ItemTypeService:
		return true
	}
	return false
}
