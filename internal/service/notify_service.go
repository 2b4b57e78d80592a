package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ucbazaar/shop-backend/internal/telegram"
)

// Notifier fans order events out to the manager chats and the customer.
// Sends are best-effort: failures are logged and never break the flow that
// triggered them.
type Notifier interface {
	NotifyManagers(ctx context.Context, text string)
	NotifyCustomer(ctx context.Context, userID int64, text string) error
}

type notifier struct {
	tg       telegram.Client
	managers []int64
}

// NewNotifier builds the manager recipient set from the primary manager id
// unioned with the extra list, deduplicated.
func NewNotifier(tg telegram.Client, primaryManager int64, extraManagers []int64) Notifier {
	seen := make(map[int64]bool)
	var managers []int64
	for _, id := range append([]int64{primaryManager}, extraManagers...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		managers = append(managers, id)
	}
	return &notifier{tg: tg, managers: managers}
}

func (n *notifier) NotifyManagers(ctx context.Context, text string) {
	for _, chatID := range n.managers {
		if err := n.tg.SendMessage(ctx, chatID, text); err != nil {
			log.WithFields(log.Fields{
				"chat_id": chatID,
				"error":   err,
			}).Warn("manager notification failed")
		}
	}
}

func (n *notifier) NotifyCustomer(ctx context.Context, userID int64, text string) error {
	return n.tg.SendMessage(ctx, userID, text)
}
