package languageutil

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys used in API error responses.
const (
	MsgInvalidBody        = "invalid_body"
	MsgUnauthorized       = "unauthorized"
	MsgFileRequired       = "file_required"
	MsgFileTooLarge       = "file_too_large"
	MsgUnsupportedImage   = "unsupported_image"
	MsgUploadFailed       = "upload_failed"
	MsgImageNotFound      = "image_not_found"
	MsgImageForbidden     = "image_forbidden"
	MsgImageInUse         = "image_in_use"
	MsgCreateFailed       = "create_failed"
	MsgItemNotFound       = "item_not_found"
	MsgDeleteFailed       = "delete_failed"
	MsgItemDeleted        = "item_deleted"
	MsgInvalidCategory    = "invalid_category"
	MsgNoItems            = "no_items"
	MsgInFlight           = "recommendation_in_flight"
	MsgSelectionRequired  = "selection_required"
	MsgRecommendFailed    = "recommend_failed"
	MsgServiceUnavailable = "service_unavailable"
)

var catalog = map[string][2]string{
	MsgInvalidBody:        {"リクエストの形式が正しくありません", "Invalid request body"},
	MsgUnauthorized:       {"認証が必要です", "Unauthorized"},
	MsgFileRequired:       {"画像ファイルを選択してください", "Please choose an image file"},
	MsgFileTooLarge:       {"ファイルサイズは5MB以下にしてください", "The file must be 5MB or smaller"},
	MsgUnsupportedImage:   {"画像ファイル（JPEG、PNG、WebP、GIF）を選択してください", "Please choose a JPEG, PNG, WebP or GIF image"},
	MsgUploadFailed:       {"画像のアップロードに失敗しました", "Failed to upload the image"},
	MsgImageNotFound:      {"画像がアップロードされていません", "The image has not been uploaded"},
	MsgImageForbidden:     {"この画像は使用できません", "This image cannot be used"},
	MsgImageInUse:         {"この画像は別のアイテムで使用されています", "This image is already used by another item"},
	MsgCreateFailed:       {"アイテムの保存に失敗しました", "Failed to save the item"},
	MsgItemNotFound:       {"アイテムが見つかりません", "Item not found"},
	MsgDeleteFailed:       {"アイテムの削除に失敗しました", "Failed to delete the item"},
	MsgItemDeleted:        {"アイテムを削除しました", "Item deleted"},
	MsgInvalidCategory:    {"カテゴリーが正しくありません", "Invalid category"},
	MsgNoItems:            {"まずは服を登録してください", "Add some clothes to your wardrobe first"},
	MsgInFlight:           {"コーディネートを作成中です。しばらくお待ちください", "A recommendation is already in progress, please wait"},
	MsgSelectionRequired:  {"場面と季節を選択してください", "Please choose an occasion and a season"},
	MsgRecommendFailed:    {"コーディネートの提案に失敗しました", "Failed to suggest an outfit"},
	MsgServiceUnavailable: {"サービスが利用できません。しばらくしてからお試しください", "Service is not available, please try again a bit later"},
}

func init() {
	for key, texts := range catalog {
		message.SetString(language.Japanese, key, texts[0])
		message.SetString(language.English, key, texts[1])
	}
}

var printers = map[string]*message.Printer{
	"ja": message.NewPrinter(language.Japanese),
	"en": message.NewPrinter(language.English),
}

// Text returns the message for key in lang ("ja" or "en"), Japanese otherwise.
func Text(lang string, key string) string {
	printer, ok := printers[lang]
	if !ok {
		printer = printers["ja"]
	}
	return printer.Sprintf(key)
}
