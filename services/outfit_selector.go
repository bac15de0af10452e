package services

import (
	"fmt"
	"math/rand"

	"wardrobeapi/models"
)

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int {
	return rand.Intn(n)
}

// DefaultRandom uses the package-level math/rand source, safe for concurrent use.
var DefaultRandom RandomSource = globalRandom{}

var basicReasonTemplates = map[models.Language]string{
	models.JA: "%sの%sに適した基本的なコーディネートを提案しました。色の組み合わせとバランスを考慮して選択しています。",
	models.EN: "Basic %s outfit (%s). Items were picked with color pairing and balance in mind.",
}

// SelectBasicOutfit builds an outfit without a model: one random top, bottom and pair
// of shoes when available, plus outerwear in autumn, winter or for formal occasions.
// Accessories are never picked. The result is ordered top, bottom, outerwear, shoes.
func SelectBasicOutfit(items []models.ClothingItem, occasion models.Occasion, season models.Season, random RandomSource, lang models.Language) models.OutfitSuggestion {
	if random == nil {
		random = DefaultRandom
	}
	buckets := make(map[models.Category][]models.ClothingItem, 4)
	for _, item := range items {
		buckets[item.Category] = append(buckets[item.Category], item)
	}

	outfit := make([]string, 0, 4)
	pick := func(category models.Category) {
		bucket := buckets[category]
		if len(bucket) == 0 {
			return
		}
		outfit = append(outfit, bucket[random.Intn(len(bucket))].Name)
	}

	pick(models.CategoryTops)
	pick(models.CategoryBottoms)
	if season.IsCold() || occasion == models.OccasionFormal {
		pick(models.CategoryOuterwear)
	}
	pick(models.CategoryShoes)

	return models.OutfitSuggestion{Outfit: outfit, Reason: BasicReason(occasion, season, lang)}
}

func BasicReason(occasion models.Occasion, season models.Season, lang models.Language) string {
	template, ok := basicReasonTemplates[lang]
	if !ok {
		lang = models.DefaultLanguage
		template = basicReasonTemplates[lang]
	}
	return fmt.Sprintf(template, season.Label(lang), occasion.Label(lang))
}
