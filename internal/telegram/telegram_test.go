package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type mockAPI struct {
	sent    []tgbotapi.Chattable
	msgID   int
	sendErr error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	return tgbotapi.Message{MessageID: m.msgID}, nil
}

func TestPublish(t *testing.T) {
	api := &mockAPI{msgID: 42}
	p := NewWithAPI(api, 777)

	got, err := p.Publish(context.Background(), "https://cdn.example.com/100.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PostID != "42" {
		t.Errorf("expected post id 42, got %q", got.PostID)
	}
	if !strings.Contains(got.Raw, "42") {
		t.Errorf("expected raw payload to carry the message, got %q", got.Raw)
	}

	video, ok := api.sent[0].(tgbotapi.VideoConfig)
	if !ok {
		t.Fatalf("expected VideoConfig, got %T", api.sent[0])
	}
	if video.ChatID != 777 {
		t.Errorf("expected chat 777, got %d", video.ChatID)
	}
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name    string
		api     *mockAPI
		wantErr error
	}{
		{name: "send error", api: &mockAPI{sendErr: errors.New("flood wait")}},
		{name: "no message id", api: &mockAPI{msgID: 0}, wantErr: ErrNoMessageID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWithAPI(tt.api, 777)
			_, err := p.Publish(context.Background(), "https://cdn.example.com/100.mp4")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	api := &mockAPI{msgID: 42}
	p := NewWithAPI(api, 777)

	err := p.Annotate(context.Background(), "42",
		"Misty Forest At Dawn", "https://clips.example.com/misty-forest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edit, ok := api.sent[0].(tgbotapi.EditMessageCaptionConfig)
	if !ok {
		t.Fatalf("expected EditMessageCaptionConfig, got %T", api.sent[0])
	}
	if edit.MessageID != 42 {
		t.Errorf("expected message 42, got %d", edit.MessageID)
	}
	if !strings.Contains(edit.Caption, "Misty Forest At Dawn") {
		t.Errorf("caption missing description: %q", edit.Caption)
	}
}

func TestAnnotateBadHandle(t *testing.T) {
	p := NewWithAPI(&mockAPI{}, 777)
	if err := p.Annotate(context.Background(), "not-a-number", "d", "p"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
