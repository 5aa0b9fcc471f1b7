package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
)

// Sender delivers one prepared message. It exists so the email notifier can
// be tested without a mail server.
type Sender interface {
	Send(ctx context.Context, recipients []string, subject, textBody, htmlBody string) error
}

// EmailNotifier builds a subject/text/html triple from a closing summary and
// hands it to the sender. Delivery failure is logged and non-blocking.
type EmailNotifier struct {
	sender     Sender
	recipients []string
	logger     *slog.Logger
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(sender Sender, recipients []string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:     sender,
		recipients: recipients,
		logger:     logger,
	}
}

// Ensure EmailNotifier implements portssvc.ClosingNotifier
var _ portssvc.ClosingNotifier = (*EmailNotifier)(nil)

func (n *EmailNotifier) NotifyClosingRecorded(ctx context.Context, companyID string, closing domain.ClosingRecord) {
	if len(n.recipients) == 0 {
		return
	}

	subject, textBody, htmlBody := BuildClosingEmail(companyID, closing)
	if err := n.sender.Send(ctx, n.recipients, subject, textBody, htmlBody); err != nil {
		n.logger.Error("Failed to deliver closing notification",
			slog.String("closing_id", closing.ClosingID),
			slog.String("company_id", companyID),
			slog.String("error", err.Error()))
		return
	}
	n.logger.Info("Closing notification delivered",
		slog.String("closing_id", closing.ClosingID),
		slog.Int("recipients", len(n.recipients)))
}

// BuildClosingEmail renders the closing summary as subject, plain text and
// HTML bodies.
func BuildClosingEmail(companyID string, closing domain.ClosingRecord) (subject, textBody, htmlBody string) {
	date := closing.ClosingDate.Format("2006-01-02")
	subject = fmt.Sprintf("Cierre diario %s - Fondo General", date)

	var text strings.Builder
	fmt.Fprintf(&text, "Cierre diario del Fondo General (%s)\n\n", companyID)
	fmt.Fprintf(&text, "Fecha: %s\nEncargado: %s\n\n", date, closing.Manager)
	fmt.Fprintf(&text, "CRC contado: %s (saldo registrado %s, diferencia %s)\n",
		closing.CountedCRC.String(), closing.RecordedBalanceCRC.String(), closing.DiffCRC.String())
	fmt.Fprintf(&text, "USD contado: %s (saldo registrado %s, diferencia %s)\n",
		closing.CountedUSD.String(), closing.RecordedBalanceUSD.String(), closing.DiffUSD.String())
	if closing.Notes != "" {
		fmt.Fprintf(&text, "\nNotas: %s\n", closing.Notes)
	}
	if closing.Resolution != nil {
		fmt.Fprintf(&text, "\nAjustes retirados: %d\n", len(closing.Resolution.RemovedAdjustments))
	}
	textBody = text.String()

	var html strings.Builder
	fmt.Fprintf(&html, "<h2>Cierre diario del Fondo General</h2>")
	fmt.Fprintf(&html, "<p><b>Fecha:</b> %s<br><b>Encargado:</b> %s</p>", date, closing.Manager)
	fmt.Fprintf(&html, "<table border=\"1\" cellpadding=\"4\"><tr><th>Moneda</th><th>Contado</th><th>Saldo registrado</th><th>Diferencia</th></tr>")
	fmt.Fprintf(&html, "<tr><td>CRC</td><td>%s</td><td>%s</td><td>%s</td></tr>",
		closing.CountedCRC.String(), closing.RecordedBalanceCRC.String(), closing.DiffCRC.String())
	fmt.Fprintf(&html, "<tr><td>USD</td><td>%s</td><td>%s</td><td>%s</td></tr>",
		closing.CountedUSD.String(), closing.RecordedBalanceUSD.String(), closing.DiffUSD.String())
	fmt.Fprintf(&html, "</table>")
	if closing.Notes != "" {
		fmt.Fprintf(&html, "<p><b>Notas:</b> %s</p>", closing.Notes)
	}
	htmlBody = html.String()

	return subject, textBody, htmlBody
}

// SMTPSender delivers messages over plain SMTP with a multipart/alternative
// body.
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s *SMTPSender) Send(_ context.Context, recipients []string, subject, textBody, htmlBody string) error {
	const boundary = "fondo-closing-boundary"

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, recipients, []byte(msg.String()))
}
