package service

import (
	"context"
	"fmt"
	"html"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/mail"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/rs/zerolog"
)

// LicenseStatusOf grades an expiry date relative to today.
func LicenseStatusOf(expiry, today time.Time, alertDays int) (model.LicenseStatus, int) {
	y, m, d := expiry.Date()
	e := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = today.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	days := int(e.Sub(t).Hours() / 24)
	switch {
	case days < 0:
		return model.LicenseExpired, days
	case days <= alertDays:
		return model.LicenseExpiringSoon, days
	}
	return model.LicenseOK, days
}

// LicenseService reports software licences that expired or are about to expire.
type LicenseService struct {
	inventory  *InventoryService
	sender     mail.Sender
	recipients []string
	alertDays  int
	log        zerolog.Logger
	now        func() time.Time
}

func NewLicenseService(inventory *InventoryService, sender mail.Sender, recipients []string, alertDays int, log zerolog.Logger) *LicenseService {
	return &LicenseService{
		inventory:  inventory,
		sender:     sender,
		recipients: recipients,
		alertDays:  alertDays,
		log:        log.With().Str("component", "license_service").Logger(),
		now:        time.Now,
	}
}

// Alerts lists the licences requiring attention today.
func (s *LicenseService) Alerts(ctx context.Context) ([]model.LicenseAlert, error) {
	return s.inventory.LicenseAlerts(ctx, s.now(), s.alertDays)
}

// Notify e-mails the current alerts to the configured recipients. It returns the number
// of alerts sent; nothing is sent when there are none.
func (s *LicenseService) Notify(ctx context.Context) (int, error) {
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return 0, err
	}
	if len(alerts) == 0 {
		s.log.Info().Msg("No licences require attention")
		return 0, nil
	}

	to, err := mail.ParseRecipients(s.recipients)
	if err != nil {
		return 0, err
	}
	if err := s.sender.Send(ctx, LicenseMessage(alerts, to, s.alertDays)); err != nil {
		return 0, fmt.Errorf("send licence alerts: %w", err)
	}
	s.log.Info().Int("alerts", len(alerts)).Int("recipients", len(to)).Msg("Licence alerts sent")
	return len(alerts), nil
}

// LicenseMessage renders the alert e-mail.
func LicenseMessage(alerts []model.LicenseAlert, to []netmail.Address, alertDays int) mail.Message {
	var text, body strings.Builder
	fmt.Fprintf(&text, "Llicències de software caducades o que caduquen en els propers %d dies:\n\n", alertDays)
	body.WriteString("<table><tr><th>Software</th><th>Caducitat</th><th>Estat</th><th>Proveïdor</th></tr>")

	for _, a := range alerts {
		name := a.Name
		if a.Version != nil && *a.Version != "" {
			name += " " + *a.Version
		}
		state := fmt.Sprintf("caduca en %d dies", a.DaysUntilExpiry)
		if a.Status == model.LicenseExpired {
			state = fmt.Sprintf("caducada fa %d dies", -a.DaysUntilExpiry)
		}
		provider := ""
		if a.ProviderName != nil {
			provider = *a.ProviderName
		}
		if a.ProviderEmail != nil && *a.ProviderEmail != "" {
			provider = strings.TrimSpace(provider + " <" + *a.ProviderEmail + ">")
		}

		expiry := a.ExpiryDate.Format("02/01/2006")
		fmt.Fprintf(&text, "- %s: %s (%s)", name, expiry, state)
		if provider != "" {
			fmt.Fprintf(&text, " - %s", provider)
		}
		text.WriteString("\n")
		fmt.Fprintf(&body, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(name), expiry, html.EscapeString(state), html.EscapeString(provider))
	}
	body.WriteString("</table>")

	return mail.Message{
		To:      to,
		Subject: fmt.Sprintf("%d llicències requereixen atenció", len(alerts)),
		Text:    text.String(),
		HTML:    body.String(),
	}
}
