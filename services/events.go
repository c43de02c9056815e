package services

import "github.com/yeremiapane/cafe-pos/models"

// EventPublisher receives notifications after successful writes. The kds hub
// implements it; a nil publisher disables notifications.
type EventPublisher interface {
	BroadcastOrderCommitted(order models.Order)
	BroadcastCatalogUpdated(action string, menuItemID uint)
}
