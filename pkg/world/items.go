package world

// Item names the rules look for. Inventory comparisons are case-insensitive.
const (
	ItemSword      = "меч"
	ItemArtifact   = "артефакт"
	ItemLightBlade = "клинок света"
	ItemPotion     = "зелье"
	ItemHerb       = "трава"
	ItemFlask      = "фляга"
)

// Descriptions attached when the rules grant an item.
const (
	DescSword       = "Острый меч для боя"
	DescArtifact    = "Древний артефакт"
	DescPotion      = "Зелье лечения"
	DescIngredient  = "Ингредиент для зелья"
	PotionHealValue = 30
)
