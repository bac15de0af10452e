package models

import (
	"github.com/go-playground/validator"
)

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

var seasonLabels = map[Season]map[Language]string{
	SeasonSpring: {JA: "春", EN: "Spring"},
	SeasonSummer: {JA: "夏", EN: "Summer"},
	SeasonAutumn: {JA: "秋", EN: "Autumn"},
	SeasonWinter: {JA: "冬", EN: "Winter"},
}

func (s Season) IsValid() bool {
	_, ok := seasonLabels[s]
	return ok
}

func (s Season) Label(lang Language) string {
	return lookupLabel(seasonLabels, s, lang)
}

// IsCold reports whether outerwear belongs in an outfit for this season.
func (s Season) IsCold() bool {
	return s == SeasonAutumn || s == SeasonWinter
}

func ValidateSeason(fl validator.FieldLevel) bool {
	return Season(fl.Field().String()).IsValid()
}
