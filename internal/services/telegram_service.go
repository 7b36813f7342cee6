package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"campuscore/internal/models"
)

// TelegramService pushes security alerts to a single admin chat. All methods
// are nil-receiver safe so the integration can stay unconfigured.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, chatID int64) *TelegramService {
	if botToken == "" || chatID == 0 {
		log.Printf("[tg][skip] token or chat id empty, alerts disabled")
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v", err)
		return nil
	}
	return &TelegramService{bot: bot, chatID: chatID}
}

func (t *TelegramService) send(text string) {
	if t == nil || t.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] %v", err)
	}
}

func (t *TelegramService) NotifyStaffLogin(u *models.User) {
	if t == nil || u == nil {
		return
	}
	t.send(fmt.Sprintf("🔐 Staff login completed: <b>%s</b> (%s)", u.Username, u.Email))
}

func (t *TelegramService) NotifyUserCreated(u *models.User) {
	if t == nil || u == nil {
		return
	}
	t.send(fmt.Sprintf("👤 New account created: <b>%s</b> role=%s", u.Username, u.Role))
}
