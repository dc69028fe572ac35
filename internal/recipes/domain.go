package recipes

// Line is one bill-of-materials entry: how much of an ingredient one unit of the recipe consumes.
type Line struct {
	IngredientID     string  `json:"ingredient_id"`
	QuantityRequired float64 `json:"quantity_required"`
}

// Recipe is a sellable item and its bill of materials, kept in insertion order.
type Recipe struct {
	ID          string `json:"id" gorm:"primaryKey;type:text"`
	Name        string `json:"name" gorm:"type:text;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Lines       []Line `json:"bill_of_materials" gorm:"-"`
}

func (Recipe) TableName() string { return "recipes" }

// PricedLine is a bill-of-materials entry joined with the ingredient's current cost.
type PricedLine struct {
	IngredientID     string
	QuantityRequired float64
	CostPerUnit      float64
}

// lineRow is the persisted form of a Line.
type lineRow struct {
	RecipeID         string  `gorm:"primaryKey;type:text"`
	IngredientID     string  `gorm:"primaryKey;type:text;index"`
	Position         int     `gorm:"not null"`
	QuantityRequired float64 `gorm:"not null"`
}

func (lineRow) TableName() string { return "recipe_ingredients" }
