package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quiz-poll/internal/domain"
	"quiz-poll/internal/util"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const pollTypeQuiz = "quiz"

// PollSender is the subset of *tgbotapi.BotAPI used to publish polls.
type PollSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PollPublisher implements domain.PollPublisher for a Telegram channel.
type PollPublisher struct {
	sender  PollSender
	channel string
	chat    tgbotapi.BaseChat
	now     func() time.Time
	logger  *zap.Logger
}

// NewBotAPI connects to Telegram and verifies the token with getMe.
func NewBotAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise telegram bot: %w", err)
	}
	logger.Info("Bot initialized successfully", zap.String("username", "@"+bot.Self.UserName))
	return bot, nil
}

// NewPollPublisher creates a publisher for channelID, which is either a
// numeric chat id or an @channelusername.
func NewPollPublisher(sender PollSender, channelID string, logger *zap.Logger) (*PollPublisher, error) {
	chat, err := baseChat(channelID)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollPublisher{
		sender:  sender,
		channel: channelID,
		chat:    chat,
		now:     time.Now,
		logger:  logger,
	}, nil
}

func baseChat(channelID string) (tgbotapi.BaseChat, error) {
	channelID = strings.TrimSpace(channelID)
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return tgbotapi.BaseChat{ChatID: id}, nil
	}
	if strings.HasPrefix(channelID, "@") && len(channelID) > 1 {
		return tgbotapi.BaseChat{ChannelUsername: channelID}, nil
	}
	return tgbotapi.BaseChat{}, fmt.Errorf("invalid channel id %q: expected a numeric chat id or @username", channelID)
}

// PublishQuiz sends q as an anonymous quiz poll.
func (p *PollPublisher) PublishQuiz(ctx context.Context, q *domain.QuizQuestion) (*domain.Publication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poll := tgbotapi.SendPollConfig{
		BaseChat:        p.chat,
		Question:        q.Prompt(),
		Options:         q.Options(),
		IsAnonymous:     true,
		Type:            pollTypeQuiz,
		CorrectOptionID: int64(q.CorrectIndex()),
		Explanation:     q.Explanation(),
	}

	msg, err := p.sender.Send(poll)
	if err != nil {
		p.logTelegramError(err)
		return nil, domain.NewPublishError(err)
	}

	p.logger.Info("Quiz sent successfully",
		zap.String("channel", p.channel),
		zap.Int("message_id", msg.MessageID),
	)
	return &domain.Publication{
		ID:           util.NewULID(),
		QuestionHash: domain.HashPrompt(q.Prompt()),
		Prompt:       q.Prompt(),
		CorrectIndex: q.CorrectIndex(),
		ChatID:       p.channel,
		MessageID:    msg.MessageID,
		PublishedAt:  p.now(),
	}, nil
}

func (p *PollPublisher) logTelegramError(err error) {
	var tgErr *tgbotapi.Error
	if !errors.As(err, &tgErr) {
		p.logger.Error("Unexpected error while sending quiz", zap.Error(err))
		return
	}

	p.logger.Error("Telegram error while sending quiz",
		zap.Int("code", tgErr.Code),
		zap.String("description", tgErr.Message),
	)
	switch tgErr.Code {
	case http.StatusForbidden:
		p.logger.Error("Bot might not have proper permissions in the channel", zap.String("channel", p.channel))
	case http.StatusBadRequest:
		p.logger.Error("Invalid quiz format or channel ID", zap.String("channel", p.channel))
	}
}

var _ domain.PollPublisher = (*PollPublisher)(nil)
