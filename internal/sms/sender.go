// Package sms is the boundary to the SMS delivery provider. The provider's
// internals are out of scope; the portal only depends on Sender.
package sms

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Sender delivers a short text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender returns a Sender that only records the message. It stands in
// for the real provider in development and tests.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log.Named("sms.sender")}
}

func (s *logSender) Send(ctx context.Context, phone, body string) error {
	_ = ctx
	s.log.Info("sms delivered (mock)", zap.String("phone", phone), zap.String("body", body))
	return nil
}

var Module = fx.Module("sms",
	fx.Provide(NewLogSender),
)
