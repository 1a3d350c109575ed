package models

// Ingredient is shared reference data; recipes point at it through
// IngredientAmount rows.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:150;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:150;not null" json:"measurement_unit"`
}

// Tag is shared reference data. Name, color and slug are all unique;
// the slug charset is validated at the API layer.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}
