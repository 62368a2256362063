package units

import "strings"

// Grocery aisle categories
const (
	CategoryProduce     = "Produce"
	CategoryMeatSeafood = "Meat & Seafood"
	CategoryDairyEggs   = "Dairy & Eggs"
	CategoryCheese      = "Cheese"
	CategoryBakery      = "Bakery & Bread"
	CategoryFrozen      = "Frozen"
	CategoryPastaRice   = "Pasta & Rice"
	CategoryCanned      = "Canned Goods"
	CategoryBaking      = "Baking"
	CategorySpices      = "Spices & Seasonings"
	CategoryCondiments  = "Condiments & Sauces"
	CategoryOils        = "Oils & Vinegars"
	CategoryNuts        = "Nuts & Dried Fruit"
	CategoryBeverages   = "Beverages"
	CategorySnacks      = "Snacks"
	CategoryOther       = "Other"
)

// Categories lists every aisle in shopping-list order
var Categories = []string{
	CategoryProduce,
	CategoryMeatSeafood,
	CategoryDairyEggs,
	CategoryCheese,
	CategoryBakery,
	CategoryFrozen,
	CategoryPastaRice,
	CategoryCanned,
	CategoryBaking,
	CategorySpices,
	CategoryCondiments,
	CategoryOils,
	CategoryNuts,
	CategoryBeverages,
	CategorySnacks,
	CategoryOther,
}

// Categorize maps an ingredient name to a grocery aisle.
// The longest keyword contained in the name wins; unmatched names are "Other".
func (t *Tables) Categorize(item string) string {
	lower := strings.ToLower(item)
	for _, kc := range t.categories {
		if strings.Contains(lower, kc.keyword) {
			return knownCategory(kc.category)
		}
	}
	return CategoryOther
}

func knownCategory(category string) string {
	for _, c := range Categories {
		if c == category {
			return c
		}
	}
	return CategoryOther
}

// Categorize maps an ingredient name to a grocery aisle using the default tables
func Categorize(item string) string {
	return Default().Categorize(item)
}
