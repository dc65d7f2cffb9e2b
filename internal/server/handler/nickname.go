package handler

import (
	"math/rand/v2"
)

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "机智的", "潇洒的", "淡定的",
	}

	nouns = []string{
		"画家", "熊猫", "狐狸", "企鹅", "考拉",
		"柯基", "龙猫", "松鼠", "水獭", "羊驼",
	}
)

// GenerateNickname 未填写昵称时生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
