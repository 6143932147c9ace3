package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-api/internal/mailer"
	"github.com/yukikurage/crm-api/internal/models"
	"go.uber.org/zap"
)

// NotificationService composes the emails sent on lead and agent events.
// Delivery is best effort: failures are logged and never returned, so a
// committed write is never undone by a mail outage.
type NotificationService struct {
	sender  mailer.Sender
	logger  *zap.Logger
	from    string
	baseURL string
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(sender mailer.Sender, logger *zap.Logger, from, baseURL string) *NotificationService {
	return &NotificationService{
		sender:  sender,
		logger:  logger,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// LeadCreated tells the organizer, and the assigned agent if any, about a new lead.
func (n *NotificationService) LeadCreated(ctx context.Context, lead *models.Lead, organizerEmail string, agent *models.Agent) {
	recipients := []string{organizerEmail}
	if agent != nil && agent.User.Email != "" {
		recipients = append(recipients, agent.User.Email)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "A new lead was added to your organization.\n\n")
	writeLeadSummary(&body, lead)
	fmt.Fprintf(&body, "\nView it at %s/leads/%d\n", n.baseURL, lead.ID)

	n.send(ctx, "lead_created", mailer.Message{
		Subject: fmt.Sprintf("New lead: %s", lead.FullName()),
		Body:    body.String(),
		From:    n.from,
		To:      recipients,
	})
}

// LeadAssigned tells an agent that a lead is now theirs.
func (n *NotificationService) LeadAssigned(ctx context.Context, lead *models.Lead, agent *models.Agent) {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\nA lead has been assigned to you.\n\n", displayName(agent.User))
	writeLeadSummary(&body, lead)
	fmt.Fprintf(&body, "\nView it at %s/leads/%d\n", n.baseURL, lead.ID)

	n.send(ctx, "lead_assigned", mailer.Message{
		Subject: fmt.Sprintf("Lead assigned: %s", lead.FullName()),
		Body:    body.String(),
		From:    n.from,
		To:      []string{agent.User.Email},
	})
}

// AgentInvited sends the new agent a link to choose their password.
func (n *NotificationService) AgentInvited(ctx context.Context, agent *models.Agent, organizerName, rawToken string, expiresAt time.Time) {
	link := n.PasswordSetupLink(rawToken)

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", displayName(agent.User))
	fmt.Fprintf(&body, "%s added you as an agent. Your username is %q.\n\n", organizerName, agent.User.Username)
	fmt.Fprintf(&body, "Choose your password here before %s:\n%s\n", expiresAt.UTC().Format(time.RFC1123), link)

	n.send(ctx, "agent_invited", mailer.Message{
		Subject: fmt.Sprintf("You are invited as an agent of %s", organizerName),
		Body:    body.String(),
		From:    n.from,
		To:      []string{agent.User.Email},
	})
}

// PasswordSetupLink builds the URL embedded in invitation emails.
func (n *NotificationService) PasswordSetupLink(rawToken string) string {
	return fmt.Sprintf("%s/set-password?token=%s", n.baseURL, rawToken)
}

func (n *NotificationService) send(ctx context.Context, kind string, msg mailer.Message) {
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send notification",
			zap.String("kind", kind),
			zap.Strings("to", msg.To),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("notification sent", zap.String("kind", kind), zap.Strings("to", msg.To))
}

func writeLeadSummary(b *strings.Builder, lead *models.Lead) {
	fmt.Fprintf(b, "Name:  %s\n", lead.FullName())
	fmt.Fprintf(b, "Age:   %d\n", lead.Age)
	fmt.Fprintf(b, "Email: %s\n", lead.Email)
	fmt.Fprintf(b, "Phone: %s\n", lead.PhoneNumber)
	if lead.Description != "" {
		fmt.Fprintf(b, "\n%s\n", lead.Description)
	}
}

func displayName(u models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
