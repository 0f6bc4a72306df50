package extract

import (
	"fmt"
	"strings"
	"unicode"
)

// プレースホルダー画像の寸法。
const (
	placeholderWidth  = 600
	placeholderHeight = 400
)

// PlaceholderImageURL は名前から決定的なプレースホルダー画像URLを生成する。
// 同じ名前からは常に同じURLが得られる。
func PlaceholderImageURL(name string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d",
		slugify(name), placeholderWidth, placeholderHeight)
}

// slugify は名前をURLセーフなシードへ変換する。
// 英数字以外はハイフンに置換し、連続ハイフンは1つにまとめる。
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := false

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "entry"
	}
	return slug
}
