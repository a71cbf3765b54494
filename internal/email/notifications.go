package email

import (
	"context"
	"log"
	"slices"
	"strings"

	"kisansense/internal/config"
	"kisansense/internal/models"
)

// AdminEmailGetter looks up officer console admins to notify.
type AdminEmailGetter interface {
	GetAdminEmails(ctx context.Context) ([]string, error)
}

// Notifier sends email notifications for farmer contact messages and
// background job failures.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	db        AdminEmailGetter
}

// NewNotifier creates a new email notifier. db may be nil, in which case
// only CONTACT_NOTIFY_TO receives mail.
func NewNotifier(cfg *config.Config, db AdminEmailGetter) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		db:        db,
	}
}

// recipients merges the configured addresses with admin officers, deduplicated
// case-insensitively.
func (n *Notifier) recipients(ctx context.Context) []string {
	out := slices.Clone(n.cfg.ContactNotifyTo)

	if n.db != nil {
		admins, err := n.db.GetAdminEmails(ctx)
		if err != nil {
			log.Printf("Failed to get admin emails: %v", err)
		}
		out = append(out, admins...)
	}

	seen := make(map[string]bool, len(out))
	uniq := out[:0]
	for _, e := range out {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, strings.TrimSpace(e))
	}
	return uniq
}

// NotifyContactMessage tells officers a farmer asked for help.
func (n *Notifier) NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) {
	if !n.service.IsEnabled() {
		return
	}

	to := n.recipients(ctx)
	if len(to) == 0 {
		log.Println("No recipients configured for contact notification")
		return
	}

	subject, htmlBody, textBody := n.templates.ContactMessageReceived(msg)
	n.service.SendAsync(to, subject, htmlBody, textBody)
}

// NotifyPrefetchFailures tells officers which cities the weather prefetcher
// could not refresh, keyed by city with the failure reason.
func (n *Notifier) NotifyPrefetchFailures(ctx context.Context, failures map[string]string) {
	if !n.service.IsEnabled() || len(failures) == 0 {
		return
	}

	to := n.recipients(ctx)
	if len(to) == 0 {
		return
	}

	subject, htmlBody, textBody := n.templates.PrefetchFailed(failures)
	n.service.SendAsync(to, subject, htmlBody, textBody)
}
