// Package telegram publishes videos to a Telegram channel.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nature_poster/internal/model"
)

// ErrNoMessageID is returned when Telegram accepts the request but the
// response carries no message ID.
var ErrNoMessageID = errors.New("response has no message id")

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher posts videos to one Telegram chat.
type Publisher struct {
	api    telegramAPI
	chatID int64
}

// New creates a Publisher with the given bot token and target chat.
func New(token string, chatID int64) (*Publisher, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Publisher{api: api, chatID: chatID}, nil
}

// NewWithAPI creates a Publisher with a custom API (useful for testing).
func NewWithAPI(api telegramAPI, chatID int64) *Publisher {
	return &Publisher{api: api, chatID: chatID}
}

// Publish sends the video by URL; Telegram downloads it server-side.
// The message ID is the post handle.
func (p *Publisher) Publish(ctx context.Context, mediaURL string) (*model.PostResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := p.api.Send(tgbotapi.NewVideo(p.chatID, tgbotapi.FileURL(mediaURL)))
	if err != nil {
		return nil, fmt.Errorf("send video: %w", err)
	}
	if msg.MessageID == 0 {
		return nil, ErrNoMessageID
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	return &model.PostResult{
		PostID: strconv.Itoa(msg.MessageID),
		Raw:    string(raw),
	}, nil
}

// Annotate sets the caption of an already-sent video message.
func (p *Publisher) Annotate(ctx context.Context, postID, description, permalink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgID, err := strconv.Atoi(postID)
	if err != nil {
		return fmt.Errorf("parse message id: %w", err)
	}

	edit := tgbotapi.NewEditMessageCaption(p.chatID, msgID,
		fmt.Sprintf("%s\n\nSource: %s", description, permalink))
	if _, err := p.api.Send(edit); err != nil {
		return fmt.Errorf("edit caption: %w", err)
	}
	return nil
}
