package handler

import (
	"crypto/subtle"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/service"
	"go.uber.org/zap"
)

// webhookSecretHeader carries the secret registered with setWebhook
const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type TelegramHandler struct {
	botService *service.BotService
	secret     string
	logger     *zap.Logger
}

// NewTelegramHandler creates the webhook handler. An empty secret disables the header check.
func NewTelegramHandler(botService *service.BotService, secret string, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{
		botService: botService,
		secret:     secret,
		logger:     logger,
	}
}

// Webhook godoc
// @Summary Telegram bot webhook
// @Description Receives bot updates. Commands such as "report banao ABC Foods Ali satisfactory" create a completed sample with passing results.
// @Tags Bot
// @Accept json
// @Produce json
// @Success 200 {object} domain.BotWebhookResponse
// @Failure 401 {object} domain.BotWebhookResponse
// @Failure 500 {object} domain.BotWebhookResponse
// @Router /telegram/webhook [post]
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			respondJSON(w, http.StatusUnauthorized, domain.BotWebhookResponse{OK: false, Error: "invalid webhook secret"})
			return
		}
	}

	// Past the secret check every failure is a 500 with the error text.
	var update tgbotapi.Update
	if err := decodeJSON(w, r, &update); err != nil {
		h.logger.Warn("failed to decode bot update", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.BotWebhookResponse{OK: false, Error: err.Error()})
		return
	}

	resp, err := h.botService.HandleUpdate(r.Context(), &update)
	if err != nil {
		h.logger.Error("failed to handle bot update",
			zap.Int("update_id", update.UpdateID),
			zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.BotWebhookResponse{OK: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
