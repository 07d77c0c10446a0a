package domain

import "fmt"

// Category identifies a card pool type
type Category int

const (
	CategoryFeaturedResonator Category = iota + 1
	CategoryFeaturedWeapon
	CategoryStandardResonator
	CategoryStandardWeapon
	CategoryBeginner
	CategoryBeginnerSelector
	CategoryBeginnerSelectorThanksgiving
)

const (
	FirstCategory = CategoryFeaturedResonator
	LastCategory  = CategoryBeginnerSelectorThanksgiving
)

// AllCategories returns every known category in ascending order.
//
// Sync passes process categories in exactly this order.
func AllCategories() []Category {
	categories := make([]Category, 0, LastCategory-FirstCategory+1)
	for category := FirstCategory; category <= LastCategory; category++ {
		categories = append(categories, category)
	}
	return categories
}

func (c Category) IsKnown() bool {
	return c >= FirstCategory && c <= LastCategory
}

func (c Category) DisplayName() string {
	switch c {
	case CategoryFeaturedResonator:
		return "Featured Resonator Convene"
	case CategoryFeaturedWeapon:
		return "Featured Weapon Convene"
	case CategoryStandardResonator:
		return "Standard Resonator Convene"
	case CategoryStandardWeapon:
		return "Standard Weapon Convene"
	case CategoryBeginner:
		return "Beginner Convene"
	case CategoryBeginnerSelector:
		return "Beginner's Choice Convene"
	case CategoryBeginnerSelectorThanksgiving:
		return "Beginner's Choice Convene (Giveback Custom Convene)"
	}
	return "New Convene"
}

func (c Category) String() string {
	return fmt.Sprintf("%d", int(c))
}
