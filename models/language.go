package models

import (
	"github.com/go-playground/validator"
	"golang.org/x/text/language"
)

type Language string

const (
	JA Language = "ja"
	EN Language = "en"
)

const DefaultLanguage = JA

var supportedTags = []language.Tag{language.Japanese, language.English}

var languageMatcher = language.NewMatcher(supportedTags)

func (l Language) IsValid() bool {
	return l == JA || l == EN
}

// MatchLanguage picks ja or en from an Accept-Language header, falling back to fallback.
func MatchLanguage(acceptLanguage string, fallback Language) Language {
	if !fallback.IsValid() {
		fallback = DefaultLanguage
	}
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	base, _ := supportedTags[index].Base()
	return Language(base.String())
}

func ValidateLanguage(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || Language(value).IsValid()
}

func lookupLabel[K ~string](labels map[K]map[Language]string, key K, lang Language) string {
	byLang, ok := labels[key]
	if !ok {
		return string(key)
	}
	if label, ok := byLang[lang]; ok {
		return label
	}
	return byLang[DefaultLanguage]
}
