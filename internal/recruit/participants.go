package recruit

// EmojiGroup はひとつの絵文字にリアクションしたユーザーを到着順に保持する
type EmojiGroup struct {
	Emoji string
	Users []UserID
}

// Participants はリアクションから導出した参加者。永続化しない
type Participants struct {
	Groups []EmojiGroup
}

func (p *Participants) Group(emoji string) []UserID {
	if p == nil {
		return nil
	}
	for _, g := range p.Groups {
		if g.Emoji == emoji {
			return g.Users
		}
	}
	return nil
}

// Unique は重複を除いた参加者を最初に現れた順で返す
func (p *Participants) Unique() []UserID {
	if p == nil {
		return nil
	}
	seen := make(map[UserID]struct{})
	var users []UserID
	for _, g := range p.Groups {
		for _, u := range g.Users {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			users = append(users, u)
		}
	}
	return users
}

func (p *Participants) Count() int {
	return len(p.Unique())
}
