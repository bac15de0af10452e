package models

import (
	"strings"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
)

var Categories = []Category{CategoryTops, CategoryBottoms, CategoryOuterwear, CategoryShoes, CategoryAccessories}

var categoryLabels = map[Category]map[Language]string{
	CategoryTops:        {JA: "トップス", EN: "Tops"},
	CategoryBottoms:     {JA: "ボトムス", EN: "Bottoms"},
	CategoryOuterwear:   {JA: "アウター", EN: "Outerwear"},
	CategoryShoes:       {JA: "シューズ", EN: "Shoes"},
	CategoryAccessories: {JA: "アクセサリー", EN: "Accessories"},
}

func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label(lang Language) string {
	return lookupLabel(categoryLabels, c, lang)
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).IsValid()
}

var suggestedColors = map[Language][]string{
	JA: {"白", "黒", "グレー", "ネイビー", "ブルー", "ライトブルー", "レッド", "ピンク", "イエロー", "グリーン", "ブラウン", "ベージュ"},
	EN: {"white", "black", "gray", "navy", "blue", "light blue", "red", "pink", "yellow", "green", "brown", "beige"},
}

// SuggestedColors is the palette offered to clients. Color stays free text.
func SuggestedColors(lang Language) []string {
	colors, ok := suggestedColors[lang]
	if !ok {
		colors = suggestedColors[DefaultLanguage]
	}
	out := make([]string, len(colors))
	copy(out, colors)
	return out
}

type ClothingItem struct {
	JsonModel
	UserID      string   `gorm:"index;not null" json:"user_id"`
	Name        string   `gorm:"size:100;not null" json:"name"`
	Category    Category `gorm:"size:20;index;not null" json:"category"`
	Color       string   `gorm:"size:30" json:"color"`
	// R2 object key, rendered as a URL on read
	ImageURL    string   `gorm:"not null" json:"image_url"`
	Description *string  `gorm:"type:text" json:"description"`
}

func (ClothingItem) TableName() string {
	return "clothing_items"
}

// AssignID gives the item a fresh id unless it already has one.
func (item *ClothingItem) AssignID() {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
}

func (item *ClothingItem) BeforeCreate(tx *gorm.DB) error {
	item.AssignID()
	return nil
}

func (item ClothingItem) DescriptionText() string {
	if item.Description == nil {
		return ""
	}
	return strings.TrimSpace(*item.Description)
}

// ResolveByName maps suggested names back to items by exact match. The first item in
// the given order wins when names collide; unknown names are skipped.
func ResolveByName(items []ClothingItem, names []string) []ClothingItem {
	byName := make(map[string]ClothingItem, len(items))
	for _, item := range items {
		if _, seen := byName[item.Name]; !seen {
			byName[item.Name] = item
		}
	}
	resolved := make([]ClothingItem, 0, len(names))
	for _, name := range names {
		if item, ok := byName[name]; ok {
			resolved = append(resolved, item)
		}
	}
	return resolved
}
