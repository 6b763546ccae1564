package project

import (
	"math/rand"
	"strconv"
	"strings"
)

// slugSuffixMax はスラグ末尾に付与する乱数の上限（排他的）。
const slugSuffixMax = 100000

// generateSlug はプロジェクト名からURLセーフなスラグを生成する。
// 空白をハイフンに置換し、英数字とハイフン以外を除去して小文字化した後、
// ランダムな数値サフィックスを付与する。
// 一意性はデータベースの制約で担保し、衝突時は呼び出し側が再生成する。
func generateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(name, " ", "-") {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String() + "-" + strconv.Itoa(rand.Intn(slugSuffixMax))
}
