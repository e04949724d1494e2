package notification

import "context"

// NotificationType classifies engine-emitted notifications
type NotificationType string

const (
	TypeBonusAwarded       NotificationType = "bonus_awarded"
	TypeBonusTransferred   NotificationType = "bonus_transferred"
	TypePunishmentApplied  NotificationType = "punishment_applied"
	TypePunishmentRemoved  NotificationType = "punishment_removed"
	TypeAchievementUnlock  NotificationType = "achievement_unlocked"
	TypeRankingRecalculate NotificationType = "ranking_recalculated"
)

// NotificationService defines the interface for notification delivery.
// Delivery is fire-and-forget: a failed notification must never fail the
// business operation that triggered it.
type NotificationService interface {
	Notify(ctx context.Context, actorID, title, message string, typ NotificationType) error
}
