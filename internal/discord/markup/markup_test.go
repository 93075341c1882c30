package markup

import "testing"

func TestFormatMention(t *testing.T) {
	got := FormatMention("1234567890")
	want := "<@1234567890>"
	if got != want {
		t.Errorf("FormatMention(\"1234567890\") == %s, want %s", got, want)
	}
}

func TestFormatMentions(t *testing.T) {
	type userID string

	tests := []struct {
		name string
		ids  []userID
		sep  string
		want string
	}{
		{name: "複数ユーザーを空白区切りで連結", ids: []userID{"1", "2"}, sep: " ", want: "<@1> <@2>"},
		{name: "単一ユーザー", ids: []userID{"1"}, sep: " ", want: "<@1>"},
		{name: "空の場合は空文字", ids: nil, sep: " ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMentions(tt.ids, tt.sep); got != tt.want {
				t.Errorf("FormatMentions() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatStrikethrough(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567890", "~~1234567890~~"},
		{"a\nb", "~~a~~\n~~b~~"},
		{"a\n\nb", "~~a~~\n\n~~b~~"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatStrikethrough(tt.in); got != tt.want {
			t.Errorf("FormatStrikethrough(%q) == %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBold(t *testing.T) {
	got := FormatBold("1234567890")
	want := "**1234567890**"
	if got != want {
		t.Errorf("FormatBold(\"1234567890\") == %s, want %s", got, want)
	}
}
