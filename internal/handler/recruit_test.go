package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"gbf-bot/internal/eventdate"
	"gbf-bot/internal/logging"
	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
)

var tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

type fixedLocale string

func (l fixedLocale) Locale() string { return string(l) }

func newTestRecruitCommand() *recruitSlashCommand {
	command := NewRecruitSlashCommand(nil, tokyo, fixedLocale("ja"), nil, logging.Nop())
	command.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, tokyo) }
	return command
}

func newRecruitInteraction(options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "author-1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    recruitCommandName,
			Options: options,
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	// JSONから来る数値はfloat64
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func TestRecruitSlashCommand_CreateCommand(t *testing.T) {
	command := newTestRecruitCommand().CreateCommand()

	if command.Name != recruitCommandName {
		t.Errorf("CreateCommand().Name = %v, want %v", command.Name, recruitCommandName)
	}
	if len(command.Options) != 3 {
		t.Fatalf("CreateCommand().Options length = %v, want 3", len(command.Options))
	}

	quest := command.Options[0]
	if quest.Name != questOptionName || !quest.Required || !quest.Autocomplete {
		t.Errorf("quest option = %+v, want required autocomplete", quest)
	}

	battleType := command.Options[1]
	if battleType.Required {
		t.Error("battle_type should be optional")
	}
	if len(battleType.Choices) != 8 {
		t.Fatalf("battle_type choices = %d, want 8", len(battleType.Choices))
	}
	if battleType.Choices[0].Name != "デフォルト" || battleType.Choices[7].Name != "闇属性" {
		t.Errorf("battle_type choices = %v .. %v", battleType.Choices[0].Name, battleType.Choices[7].Name)
	}
	if battleType.Choices[7].Value != 7 {
		t.Errorf("battle_type choices[7].Value = %v, want 7", battleType.Choices[7].Value)
	}

	if command.Options[2].Name != eventDateOptionName || command.Options[2].Required {
		t.Errorf("event_date option = %+v", command.Options[2])
	}
}

func TestRecruitSlashCommand_BuildParams(t *testing.T) {
	tests := []struct {
		name           string
		options        []*discordgo.ApplicationCommandInteractionDataOption
		wantQuest      string
		wantBattleType recruit.BattleType
		wantExpiry     time.Time
		wantErr        error
	}{
		{
			name:           "クエストのみなら当日21時",
			options:        []*discordgo.ApplicationCommandInteractionDataOption{stringOption(questOptionName, " ベルHL ")},
			wantQuest:      "ベルHL",
			wantBattleType: recruit.BattleTypeDefault,
			wantExpiry:     time.Date(2026, 10, 16, 21, 0, 0, 0, tokyo),
		},
		{
			name: "全ての引数",
			options: []*discordgo.ApplicationCommandInteractionDataOption{
				stringOption(questOptionName, "ルシHL"),
				intOption(battleTypeOptionName, int(recruit.BattleTypeFire)),
				stringOption(eventDateOptionName, "12/25 15:30"),
			},
			wantQuest:      "ルシHL",
			wantBattleType: recruit.BattleTypeFire,
			wantExpiry:     time.Date(2026, 12, 25, 15, 30, 0, 0, tokyo),
		},
		{
			name:    "クエストが空",
			options: []*discordgo.ApplicationCommandInteractionDataOption{stringOption(questOptionName, "  ")},
			wantErr: errQuestRequired,
		},
		{
			name: "日時が読めない",
			options: []*discordgo.ApplicationCommandInteractionDataOption{
				stringOption(questOptionName, "ベルHL"),
				stringOption(eventDateOptionName, "そのうち"),
			},
			wantErr: eventdate.ErrUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := newTestRecruitCommand().buildParams(newRecruitInteraction(tt.options...))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("buildParams() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildParams() error = %v", err)
			}

			if params.QuestText != tt.wantQuest {
				t.Errorf("QuestText = %v, want %v", params.QuestText, tt.wantQuest)
			}
			if params.BattleType != tt.wantBattleType {
				t.Errorf("BattleType = %v, want %v", params.BattleType, tt.wantBattleType)
			}
			if !params.ExpiryDate.Equal(tt.wantExpiry) {
				t.Errorf("ExpiryDate = %v, want %v", params.ExpiryDate, tt.wantExpiry)
			}
			if params.GuildID != "guild-1" || params.ChannelID != "channel-1" || params.AuthorID != "author-1" {
				t.Errorf("params = %+v", params)
			}
		})
	}
}

type fakeQuestSearcher struct {
	prefix  string
	limit   int
	aliases []string
	err     error
}

func (s *fakeQuestSearcher) SearchAliases(_ context.Context, prefix string, limit int) ([]string, error) {
	s.prefix = prefix
	s.limit = limit
	return s.aliases, s.err
}

func TestQuestAutocomplete_Choices(t *testing.T) {
	searcher := &fakeQuestSearcher{aliases: []string{"ベルHL", "ベルゼバブ"}}
	command := NewQuestAutocomplete(searcher, logging.Nop())

	interaction := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommandAutocomplete,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: recruitCommandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: questOptionName, Type: discordgo.ApplicationCommandOptionString, Value: "ベル", Focused: true},
			},
		},
	}

	choices, err := command.choices(context.Background(), interaction)
	if err != nil {
		t.Fatalf("choices() error = %v", err)
	}

	if searcher.prefix != "ベル" || searcher.limit != maxAutocompleteChoices {
		t.Errorf("SearchAliases(%q, %d), want (ベル, %d)", searcher.prefix, searcher.limit, maxAutocompleteChoices)
	}
	if len(choices) != 2 {
		t.Fatalf("choices length = %d, want 2", len(choices))
	}
	if choices[0].Name != "ベルHL" || choices[0].Value != "ベルHL" {
		t.Errorf("choices[0] = %+v", choices[0])
	}
}

func TestQuestAutocomplete_ChoicesError(t *testing.T) {
	searcher := &fakeQuestSearcher{err: errors.New("database is locked")}
	command := NewQuestAutocomplete(searcher, logging.Nop())

	interaction := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommandAutocomplete,
		Data: discordgo.ApplicationCommandInteractionData{Name: recruitCommandName},
	}

	if _, err := command.choices(context.Background(), interaction); err == nil {
		t.Error("choices() should return error")
	}
	if searcher.prefix != "" {
		t.Errorf("prefix = %q, want empty", searcher.prefix)
	}
}
