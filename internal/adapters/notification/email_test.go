package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	recipients []string
	subject    string
	textBody   string
	htmlBody   string
	calls      int
	err        error
}

func (c *captureSender) Send(_ context.Context, recipients []string, subject, textBody, htmlBody string) error {
	c.calls++
	c.recipients = recipients
	c.subject = subject
	c.textBody = textBody
	c.htmlBody = htmlBody
	return c.err
}

func sampleClosing() domain.ClosingRecord {
	return domain.ClosingRecord{
		ClosingID:          "closing-1",
		CreatedAt:          time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC),
		ClosingDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Manager:            "Ana",
		CountedCRC:         decimal.NewFromInt(7500),
		CountedUSD:         decimal.NewFromInt(120),
		RecordedBalanceCRC: decimal.NewFromInt(7000),
		RecordedBalanceUSD: decimal.NewFromInt(120),
		DiffCRC:            decimal.NewFromInt(500),
	}
}

func TestBuildClosingEmail(t *testing.T) {
	subject, textBody, htmlBody := BuildClosingEmail("company-1", sampleClosing())

	assert.Contains(t, subject, "2024-03-01")
	assert.Contains(t, subject, "Cierre diario")

	assert.Contains(t, textBody, "Encargado: Ana")
	assert.Contains(t, textBody, "7500")
	assert.Contains(t, textBody, "diferencia 500")

	assert.Contains(t, htmlBody, "<table")
	assert.Contains(t, htmlBody, "<td>CRC</td>")
	assert.Contains(t, htmlBody, "<td>500</td>")
}

func TestNotifyClosingRecordedDelivers(t *testing.T) {
	sender := &captureSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewEmailNotifier(sender, []string{"duena@example.com"}, logger)

	notifier.NotifyClosingRecorded(context.Background(), "company-1", sampleClosing())

	require.Equal(t, 1, sender.calls)
	assert.Equal(t, []string{"duena@example.com"}, sender.recipients)
	assert.NotEmpty(t, sender.subject)
}

func TestNotifyClosingRecordedSkipsWithoutRecipients(t *testing.T) {
	sender := &captureSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewEmailNotifier(sender, nil, logger)

	notifier.NotifyClosingRecorded(context.Background(), "company-1", sampleClosing())
	assert.Zero(t, sender.calls)
}

func TestNotifyClosingRecordedSwallowsSendFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewEmailNotifier(sender, []string{"duena@example.com"}, logger)

	// Must not panic or propagate.
	notifier.NotifyClosingRecorded(context.Background(), "company-1", sampleClosing())
	assert.Equal(t, 1, sender.calls)
}
