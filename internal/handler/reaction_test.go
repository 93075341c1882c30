package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"gbf-bot/internal/logging"
	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type fakeParticipantHandler struct {
	keys []recruit.MessageKey
	err  error
	ctx  context.Context
}

func (h *fakeParticipantHandler) OnParticipantChange(ctx context.Context, key recruit.MessageKey) error {
	h.ctx = ctx
	h.keys = append(h.keys, key)
	return h.err
}

type recordingObserver struct {
	events []string
	errs   []error
}

func (o *recordingObserver) ObserveEvent(event string, _ time.Time, err error) {
	o.events = append(o.events, event)
	o.errs = append(o.errs, err)
}

func newReaction() *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    "user-1",
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		MessageID: "message-1",
		Emoji:     discordgo.Emoji{Name: "🙋"},
	}
}

func TestParticipantReactionListener_Handle(t *testing.T) {
	tests := []struct {
		name       string
		newFunc    func(ParticipantChangeHandler, EventObserver, *zap.SugaredLogger) *participantReactionListener
		serviceErr error
	}{
		{name: "リアクション追加", newFunc: NewReactionAddListener},
		{name: "リアクション削除", newFunc: NewReactionRemoveListener},
		{name: "集計失敗でもエラーは返さない", newFunc: NewReactionAddListener, serviceErr: &recruit.PlatformError{Op: "edit", Err: errors.New("503")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeParticipantHandler{err: tt.serviceErr}
			observer := &recordingObserver{}
			listener := tt.newFunc(service, observer, logging.Nop())

			if err := listener.Handle(nil, newReaction()); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			want := recruit.MessageKey{GuildID: "guild-1", ChannelID: "channel-1", MessageID: "message-1"}
			if len(service.keys) != 1 || service.keys[0] != want {
				t.Fatalf("OnParticipantChange() keys = %v, want [%v]", service.keys, want)
			}
			if _, ok := service.ctx.Deadline(); !ok {
				t.Error("context should have deadline")
			}
			if len(observer.events) != 1 || observer.events[0] != participantEventName {
				t.Fatalf("observed events = %v", observer.events)
			}
			if !errors.Is(observer.errs[0], tt.serviceErr) {
				t.Errorf("observed error = %v, want %v", observer.errs[0], tt.serviceErr)
			}
		})
	}
}
