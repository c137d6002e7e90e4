package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/meatlab/lims-api/internal/repository"
	"github.com/meatlab/lims-api/internal/telegram"
	"go.uber.org/zap"
)

// Fixed readings recorded for a bot-created satisfactory sample
const (
	botSampleType = "Beef"
	botTPC        = 50000
	botSAureus    = "50"
	botNegative   = "negative"
	botRemarks    = "Satisfactory"
)

// BotService turns chat commands into satisfactory sample reports
type BotService struct {
	sampleRepo    *repository.SampleRepository
	resultRepo    *repository.TestResultRepository
	reports       *ReportService
	sender        telegram.Sender
	sendDocuments bool
	logger        *zap.Logger
	now           func() time.Time
}

func NewBotService(
	sampleRepo *repository.SampleRepository,
	resultRepo *repository.TestResultRepository,
	reports *ReportService,
	sender telegram.Sender,
	sendDocuments bool,
	logger *zap.Logger,
) *BotService {
	if sender == nil {
		sender = telegram.NopSender{}
	}
	return &BotService{
		sampleRepo:    sampleRepo,
		resultRepo:    resultRepo,
		reports:       reports,
		sender:        sender,
		sendDocuments: sendDocuments,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleUpdate processes one webhook update. Reply delivery failures are
// logged only; a failure to write the sample is returned to the caller.
func (s *BotService) HandleUpdate(ctx context.Context, update *tgbotapi.Update) (*domain.BotWebhookResponse, error) {
	if update == nil || update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		return &domain.BotWebhookResponse{OK: true, Message: "No text message"}, nil
	}

	msg := update.Message
	var chatID int64
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	text := msg.Text

	if telegram.IsHelpCommand(text) {
		s.reply(ctx, chatID, telegram.HelpMessage())
		return &domain.BotWebhookResponse{OK: true}, nil
	}

	cmd, ok := telegram.ParseCommand(text)
	if !ok {
		s.reply(ctx, chatID, telegram.NotUnderstoodMessage())
		return &domain.BotWebhookResponse{OK: true}, nil
	}

	s.logger.Info("bot command received",
		zap.Int64("chat_id", chatID),
		zap.String("party", cmd.Party),
		zap.String("customer", cmd.Customer),
		zap.String("status", cmd.Status))

	s.reply(ctx, chatID, telegram.CreatingMessage(cmd))

	if !cmd.IsSatisfactory() {
		s.reply(ctx, chatID, telegram.UnsatisfactoryMessage())
		return &domain.BotWebhookResponse{OK: true}, nil
	}

	sample, err := s.createSatisfactorySample(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.reply(ctx, chatID, telegram.CreatedMessage(sample.SampleCode, cmd))

	if s.sendDocuments && s.reports != nil {
		s.sendReport(ctx, chatID, sample)
	}

	return &domain.BotWebhookResponse{OK: true}, nil
}

// createSatisfactorySample writes a completed sample with passing readings.
// Every call creates a new sample; the code is derived from the clock.
func (s *BotService) createSatisfactorySample(ctx context.Context, cmd telegram.Command) (*domain.Sample, error) {
	now := s.now()
	today := startOfDay(now)

	sample := &domain.Sample{
		SampleCode:     fmt.Sprintf("SAMPLE-%d", now.UnixMilli()),
		SampleType:     botSampleType,
		Source:         cmd.Party,
		CollectionDate: today,
		ReceivedDate:   today,
		Status:         domain.SampleStatusCompleted,
	}
	if err := s.sampleRepo.Create(ctx, sample); err != nil {
		return nil, fmt.Errorf("sample creation failed: %w", err)
	}

	tpc := float64(botTPC)
	sAureus, coliforms, ecoli, salmonella := botSAureus, botNegative, botNegative, botNegative
	result := &domain.TestResult{
		SampleID:   sample.ID,
		TPC:        &tpc,
		SAureus:    &sAureus,
		Coliforms:  &coliforms,
		EcoliO157:  &ecoli,
		Salmonella: &salmonella,
		Remarks:    botRemarks,
		TestedAt:   now.UTC(),
	}
	if err := s.resultRepo.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("test result creation failed: %w", err)
	}

	s.logger.Info("bot sample created",
		zap.String("sample_code", sample.SampleCode),
		zap.String("party", cmd.Party))

	return sample, nil
}

func (s *BotService) sendReport(ctx context.Context, chatID int64, sample *domain.Sample) {
	rendered, err := s.reports.Generate(ctx, sample.ID, report.Options{Action: report.ActionDownload})
	if err != nil {
		s.logger.Error("failed to render bot report",
			zap.String("sample_code", sample.SampleCode),
			zap.Error(err))
		return
	}
	if err := s.sender.SendDocument(ctx, chatID, rendered.Filename, rendered.Data, telegram.DocumentCaption(sample.SampleCode)); err != nil {
		s.logger.Warn("failed to deliver bot report",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (s *BotService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.sender.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Warn("failed to send bot reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
