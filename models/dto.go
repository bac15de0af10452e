package models

// OutfitSuggestion is never persisted.
type OutfitSuggestion struct {
	Outfit []string `json:"outfit"`
	Reason string   `json:"reason"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type WardrobeOptionsOut struct {
	Categories      []Option `json:"categories"`
	SuggestedColors []string `json:"suggested_colors"`
}

type CoordinationOptionsOut struct {
	Occasions []Option `json:"occasions"`
	Seasons   []Option `json:"seasons"`
}

func CategoryOptions(lang Language) []Option {
	options := make([]Option, 0, len(Categories))
	for _, c := range Categories {
		options = append(options, Option{Value: string(c), Label: c.Label(lang)})
	}
	return options
}

func OccasionOptions(lang Language) []Option {
	options := make([]Option, 0, len(Occasions))
	for _, o := range Occasions {
		options = append(options, Option{Value: string(o), Label: o.Label(lang)})
	}
	return options
}

func SeasonOptions(lang Language) []Option {
	options := make([]Option, 0, len(Seasons))
	for _, s := range Seasons {
		options = append(options, Option{Value: string(s), Label: s.Label(lang)})
	}
	return options
}
