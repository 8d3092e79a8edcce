// services/sms.go
package services

import (
	"context"
	"fmt"

	"spacrm-backend/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// SMSSender delivers a text message. A returned error means delivery
// failed; callers decide whether that matters.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

type TwilioSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
	logger      *zap.Logger
}

func NewTwilioSender(accountSID, authToken, from, countryCode string, logger *zap.Logger) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:        from,
		countryCode: countryCode,
		logger:      logger,
	}
}

func (s *TwilioSender) Send(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(utils.ToE164(to, s.countryCode))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid != nil {
		s.logger.Debug("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}

// LogSender is used when no SMS gateway is configured. It only logs.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, body string) error {
	s.logger.Info("sms gateway not configured, message dropped", zap.String("to", to), zap.Int("length", len(body)))
	return nil
}
