package recruit

import "fmt"

type BattleType int

const (
	BattleTypeDefault BattleType = iota
	BattleTypeAllElement
	BattleTypeFire
	BattleTypeWater
	BattleTypeEarth
	BattleTypeWind
	BattleTypeLight
	BattleTypeDark
)

// 属性リアクション
const (
	EmojiFire  = "🔥"
	EmojiWater = "💧"
	EmojiEarth = "🌱"
	EmojiWind  = "🌪️"
	EmojiLight = "✨"
	EmojiDark  = "🌑"
)

var allElementEmojis = []string{EmojiFire, EmojiWater, EmojiEarth, EmojiWind, EmojiLight, EmojiDark}

var battleTypeNames = map[BattleType]string{
	BattleTypeDefault:    "デフォルト",
	BattleTypeAllElement: "全属性",
	BattleTypeFire:       "火属性",
	BattleTypeWater:      "水属性",
	BattleTypeEarth:      "土属性",
	BattleTypeWind:       "風属性",
	BattleTypeLight:      "光属性",
	BattleTypeDark:       "闇属性",
}

var elementEmojis = map[BattleType]string{
	BattleTypeFire:  EmojiFire,
	BattleTypeWater: EmojiWater,
	BattleTypeEarth: EmojiEarth,
	BattleTypeWind:  EmojiWind,
	BattleTypeLight: EmojiLight,
	BattleTypeDark:  EmojiDark,
}

// AllBattleTypes はコマンドの選択肢順に並んだ全バトル種別
func AllBattleTypes() []BattleType {
	return []BattleType{
		BattleTypeDefault,
		BattleTypeAllElement,
		BattleTypeFire,
		BattleTypeWater,
		BattleTypeEarth,
		BattleTypeWind,
		BattleTypeLight,
		BattleTypeDark,
	}
}

func ParseBattleType(value int) (BattleType, error) {
	bt := BattleType(value)
	if !bt.Valid() {
		return BattleTypeDefault, fmt.Errorf("invalid battle type: %d", value)
	}
	return bt, nil
}

func (bt BattleType) Valid() bool {
	_, ok := battleTypeNames[bt]
	return ok
}

func (bt BattleType) Name() string {
	if name, ok := battleTypeNames[bt]; ok {
		return name
	}
	return battleTypeNames[BattleTypeDefault]
}

// IsAllElements は全属性を受け付ける種別かを返す
func (bt BattleType) IsAllElements() bool {
	_, single := elementEmojis[bt]
	return !single
}

// Emojis は種別に対応するリアクション絵文字を返す
func (bt BattleType) Emojis() []string {
	if emoji, ok := elementEmojis[bt]; ok {
		return []string{emoji}
	}
	return append([]string(nil), allElementEmojis...)
}

// HasEmoji は絵文字が種別の対象リアクションかを返す
func (bt BattleType) HasEmoji(name string) bool {
	for _, emoji := range bt.Emojis() {
		if emoji == name {
			return true
		}
	}
	return false
}

// ElementName は絵文字に対応する属性名を返す
func ElementName(emoji string) string {
	for bt, e := range elementEmojis {
		if e == emoji {
			return bt.Name()
		}
	}
	return ""
}

// Resolve はデフォルト指定をクエストの既定種別で置き換える
func (bt BattleType) Resolve(quest *Quest) BattleType {
	if bt != BattleTypeDefault || quest == nil {
		return bt
	}
	if quest.DefaultBattleType.Valid() {
		return quest.DefaultBattleType
	}
	return bt
}
