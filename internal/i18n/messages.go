package i18n

import "golang.org/x/text/language"

// messages maps locale to message key to format string.
var messages = map[language.Tag]map[string]string{
	language.Japanese: {
		"page.title":       "掲示板",
		"form.body_label":  "本文（1〜%s文字）",
		"form.image_label": "画像（任意・%sまで / %s）",
		"form.submit":      "送信",
		"form.size_alert":  "%s以下のファイルを選んでください。",
		"list.heading":     "投稿一覧",
		"list.image_alt":   "添付画像",
		"error.body":       "本文は1〜%s文字で入力してください。",
		"error.size":       "画像は%s以下にしてください。",
		"error.mime":       "画像は %s のみ対応です。",
		"error.move":       "画像の保存に失敗しました。",
		"error.generic":    "エラーが発生しました。",
	},
	language.English: {
		"page.title":       "Bulletin Board",
		"form.body_label":  "Message (1–%s characters)",
		"form.image_label": "Image (optional, up to %s / %s)",
		"form.submit":      "Post",
		"form.size_alert":  "Please choose a file of %s or less.",
		"list.heading":     "Posts",
		"list.image_alt":   "attached image",
		"error.body":       "Messages must be 1 to %s characters long.",
		"error.size":       "Images must be %s or smaller.",
		"error.mime":       "Only %s images are supported.",
		"error.move":       "The image could not be saved.",
		"error.generic":    "Something went wrong.",
	},
}
