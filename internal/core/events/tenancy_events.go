package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCompanyCreated     = "company.created"
	EventTypeMembershipCreated  = "membership.created"
	EventTypeInvitationCreated  = "invitation.created"
	EventTypeInvitationAccepted = "invitation.accepted"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewCompanyCreatedEvent(companyID, createdBy int64, name string) BaseEvent {
	return newBase(EventTypeCompanyCreated, map[string]interface{}{
		"company_id": companyID,
		"created_by": createdBy,
		"name":       name,
	})
}

func NewMembershipCreatedEvent(membershipID, userID, companyID, roleID int64) BaseEvent {
	return newBase(EventTypeMembershipCreated, map[string]interface{}{
		"membership_id": membershipID,
		"user_id":       userID,
		"company_id":    companyID,
		"role_id":       roleID,
	})
}

// NewInvitationCreatedEvent carries the token so a delivery subscriber can
// build the acceptance link. The audit subscriber never logs it.
func NewInvitationCreatedEvent(invitationID, companyID int64, email, token string, expiresAt time.Time) BaseEvent {
	return newBase(EventTypeInvitationCreated, map[string]interface{}{
		"invitation_id": invitationID,
		"company_id":    companyID,
		"email":         email,
		"token":         token,
		"expires_at":    expiresAt,
	})
}

func NewInvitationAcceptedEvent(invitationID, userID, companyID int64) BaseEvent {
	return newBase(EventTypeInvitationAccepted, map[string]interface{}{
		"invitation_id": invitationID,
		"user_id":       userID,
		"company_id":    companyID,
	})
}

// RegisterAuditLog subscribes a structured audit line for every tenancy event.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := func(ctx context.Context, event Event) error {
		attrs := []any{"event_type", event.EventType(), "event_id", event.EventID()}
		if data, ok := event.Payload().(map[string]interface{}); ok {
			for k, v := range data {
				if k == "token" {
					continue
				}
				attrs = append(attrs, k, v)
			}
		}
		logger.InfoContext(ctx, "audit", attrs...)
		return nil
	}
	for _, t := range []string{EventTypeCompanyCreated, EventTypeMembershipCreated, EventTypeInvitationCreated, EventTypeInvitationAccepted} {
		bus.Subscribe(t, audit)
	}
}
