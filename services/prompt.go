package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"wardrobeapi/models"
)

var ErrNoJSONObject = errors.New("reply contains no JSON object")
var ErrIncompleteSuggestion = errors.New("reply JSON is missing outfit or reason")

// first "{" through last "}", newlines included
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// BuildOutfitPrompt lists every item and asks for a JSON reply with outfit and reason.
func BuildOutfitPrompt(items []models.ClothingItem, occasion models.Occasion, season models.Season, lang models.Language) string {
	var list strings.Builder
	for _, item := range items {
		list.WriteString("- ")
		list.WriteString(item.Name)
		fmt.Fprintf(&list, " (%s, %s)", item.Category, item.Color)
		if description := item.DescriptionText(); description != "" {
			list.WriteString(": ")
			list.WriteString(description)
		}
		list.WriteString("\n")
	}

	seasonText := season.Label(lang)
	occasionText := occasion.Label(lang)
	if lang == models.EN {
		return fmt.Sprintf(`Suggest an outfit for %s in %s using the clothing items below.

Clothing items:
%s
Follow these conditions:
1. Season: %s
2. Occasion: %s
3. Consider how the colors combine
4. Keep the outfit balanced

Reply in the following JSON format:
{
  "outfit": ["item name 1", "item name 2", "item name 3"],
  "reason": "Explain in about 150 characters why you chose this outfit"
}`, occasionText, seasonText, list.String(), seasonText, occasionText)
	}
	return fmt.Sprintf(`以下の服アイテムから、%sの%sに適したコーディネートを提案してください。

服のリスト:
%s
以下の条件で提案してください：
1. 季節: %s
2. 場面: %s
3. 色の組み合わせを考慮
4. バランスの良いコーディネート

回答は以下のJSON形式でお願いします:
{
  "outfit": ["アイテム名1", "アイテム名2", "アイテム名3"],
  "reason": "このコーディネートを選んだ理由を150文字程度で説明"
}`, seasonText, occasionText, list.String(), seasonText, occasionText)
}

type suggestionReply struct {
	Outfit *[]string `json:"outfit"`
	Reason *string   `json:"reason"`
}

// ExtractSuggestion parses the first "{" to last "}" span of a model reply. Both
// fields must be present; the values are used as-is.
func ExtractSuggestion(reply string) (*models.OutfitSuggestion, error) {
	raw := jsonObjectRegex.FindString(reply)
	if raw == "" {
		return nil, ErrNoJSONObject
	}
	var parsed suggestionReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse suggestion json: %w", err)
	}
	if parsed.Outfit == nil || parsed.Reason == nil {
		return nil, ErrIncompleteSuggestion
	}
	return &models.OutfitSuggestion{Outfit: *parsed.Outfit, Reason: *parsed.Reason}, nil
}
