package models

import (
	"github.com/go-playground/validator"
)

type Occasion string

const (
	OccasionCasual Occasion = "casual"
	OccasionWork   Occasion = "work"
	OccasionFormal Occasion = "formal"
	OccasionDate   Occasion = "date"
	OccasionParty  Occasion = "party"
	OccasionSports Occasion = "sports"
)

var Occasions = []Occasion{OccasionCasual, OccasionWork, OccasionFormal, OccasionDate, OccasionParty, OccasionSports}

var occasionLabels = map[Occasion]map[Language]string{
	OccasionCasual: {JA: "カジュアル", EN: "Casual"},
	OccasionWork:   {JA: "ビジネス", EN: "Work"},
	OccasionFormal: {JA: "フォーマル", EN: "Formal"},
	OccasionDate:   {JA: "デート", EN: "Date"},
	OccasionParty:  {JA: "パーティー", EN: "Party"},
	OccasionSports: {JA: "スポーツ", EN: "Sports"},
}

func (o Occasion) IsValid() bool {
	_, ok := occasionLabels[o]
	return ok
}

func (o Occasion) Label(lang Language) string {
	return lookupLabel(occasionLabels, o, lang)
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	return Occasion(fl.Field().String()).IsValid()
}
