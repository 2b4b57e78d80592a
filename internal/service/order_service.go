package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"github.com/ucbazaar/shop-backend/internal/telegram"
	"gorm.io/gorm"
)

type TransitionResult struct {
	Order *model.Order
	// CustomerUnreachable is set when the customer notification failed
	// because the chat is gone or the bot is blocked. It is surfaced as a
	// warning, never as a failure of the transition itself.
	CustomerUnreachable bool
}

type CartLine struct {
	ProductID uint64
	Qty       int
}

type Stats struct {
	ByStatus map[model.OrderStatus]int64
	Revenue  int64
}

type OrderService interface {
	Transition(ctx context.Context, orderID uint64, status model.OrderStatus, nickname *string) (*TransitionResult, error)
	ConfirmPayment(ctx context.Context, orderID uint64) (*model.Order, error)
	Checkout(ctx context.Context, userID int64, pubgID, nickname string, lines []CartLine) ([]model.Order, error)
	Get(ctx context.Context, id uint64) (*model.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

type orderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	products  repository.ProductRepository
	stock     StockLedger
	referrals ReferralLedger
	notifier  Notifier
}

func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	stock StockLedger,
	referrals ReferralLedger,
	notifier Notifier,
) OrderService {
	return &orderService{
		orders:    orders,
		users:     users,
		products:  products,
		stock:     stock,
		referrals: referrals,
		notifier:  notifier,
	}
}

// Transition moves an order to the requested status. Only the conditional
// status persist can fail the operation; stock, referral, and notification
// side effects are each best-effort and independently isolated.
func (s *orderService) Transition(ctx context.Context, orderID uint64, status model.OrderStatus, nickname *string) (*TransitionResult, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	prev := order.Status

	rows, err := s.orders.UpdateStatusFrom(ctx, orderID, prev, status, nickname)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, ferr := s.orders.FindByID(ctx, orderID); errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	order.Status = status
	if nickname != nil {
		order.Nickname = *nickname
	}

	s.applyStockEffects(ctx, order, prev, status)

	if prev == model.OrderStatusUnpaid && status != model.OrderStatusUnpaid {
		s.creditReferrals(ctx, order)
	}

	unreachable := s.notifyTransition(ctx, order, prev, status)

	return &TransitionResult{Order: order, CustomerUnreachable: unreachable}, nil
}

func (s *orderService) applyStockEffects(ctx context.Context, order *model.Order, from, to model.OrderStatus) {
	for _, effect := range StockEffectsFor(from, to) {
		for _, item := range order.Products {
			delta := int64(effect.Sign) * int64(item.Qty)
			if delta == 0 {
				continue
			}
			if _, err := s.stock.Adjust(ctx, item.ProductID, delta, effect.Note); err != nil {
				log.WithFields(log.Fields{
					"order_id":   order.ID,
					"product_id": item.ProductID,
					"delta":      delta,
					"error":      err,
				}).Warn("stock adjustment failed")
			}
		}
	}
}

// creditReferrals runs at most once per order: the credited flag is flipped
// with a conditional update before any points move.
func (s *orderService) creditReferrals(ctx context.Context, order *model.Order) {
	rows, err := s.orders.MarkReferralCredited(ctx, order.ID)
	if err != nil {
		log.WithFields(log.Fields{"order_id": order.ID, "error": err}).Warn("referral credit gate failed")
		return
	}
	if rows == 0 {
		return
	}
	order.ReferralCredited = true
	res, err := s.referrals.CreditOnQualifyingOrder(ctx, order)
	if err != nil {
		log.WithFields(log.Fields{"order_id": order.ID, "error": err}).Warn("referral credit failed")
		return
	}
	if res.Level1 > 0 || res.Level2 > 0 {
		log.WithFields(log.Fields{
			"order_id": order.ID,
			"level1":   res.Level1,
			"level2":   res.Level2,
		}).Info("referral commissions credited")
	}
}

func (s *orderService) notifyTransition(ctx context.Context, order *model.Order, from, to model.OrderStatus) bool {
	summary := orderSummary(order)
	var customerText string

	switch {
	case from == model.OrderStatusUnpaid && to == model.OrderStatusPending:
		s.notifier.NotifyManagers(ctx, "💰 Поступила оплата\n\n"+summary)
		customerText = "✅ Оплата получена! Заказ принят в обработку.\n\n" + summary
	case to == model.OrderStatusError:
		s.notifier.NotifyManagers(ctx, "⚠️ Ошибка активации, нужна ручная проверка\n\n"+summary)
		customerText = "⚠️ Возникла проблема с вашим заказом. Мы уже разбираемся и свяжемся с вами.\n\n" + summary
	case to == model.OrderStatusDelivered:
		customerText = "🎉 Заказ доставлен. Спасибо за покупку!\n\n" + summary
	default:
		s.notifier.NotifyManagers(ctx, fmt.Sprintf("ℹ️ Статус заказа #%d изменён: %s → %s\n\n%s", order.ID, from, to, summary))
		return false
	}

	if err := s.notifier.NotifyCustomer(ctx, order.UserID, customerText); err != nil {
		if errors.Is(err, telegram.ErrRecipientUnreachable) {
			log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID}).
				Warn("customer unreachable")
			return true
		}
		log.WithFields(log.Fields{"order_id": order.ID, "user_id": order.UserID, "error": err}).
			Warn("customer notification failed")
	}
	return false
}

// ConfirmPayment drives the webhook path: the referenced order moves to
// pending, and every non-terminal sibling in the same checkout group moves
// with it. Terminal orders are acknowledged without reprocessing.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID uint64) (*model.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if paymentSettled(order.Status) || order.Status == model.OrderStatusPending {
		return order, nil
	}

	res, err := s.Transition(ctx, orderID, model.OrderStatusPending, nil)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// A concurrent delivery of the same webhook won the race.
			return s.Get(ctx, orderID)
		}
		return nil, err
	}

	if order.CheckoutID != "" {
		siblings, err := s.orders.ListByCheckout(ctx, order.CheckoutID)
		if err != nil {
			log.WithFields(log.Fields{"checkout_id": order.CheckoutID, "error": err}).
				Warn("checkout group lookup failed")
			return res.Order, nil
		}
		for _, sib := range siblings {
			if sib.ID == orderID || paymentSettled(sib.Status) || sib.Status == model.OrderStatusPending {
				continue
			}
			if _, err := s.Transition(ctx, sib.ID, model.OrderStatusPending, nil); err != nil {
				log.WithFields(log.Fields{"order_id": sib.ID, "error": err}).
					Warn("sibling order transition failed")
			}
		}
	}
	return res.Order, nil
}

func paymentSettled(s model.OrderStatus) bool {
	return s == model.OrderStatusDelivered || s == model.OrderStatusError
}

// Checkout creates unpaid orders from the cart, split by fulfillment type
// and linked by a shared checkout id.
func (s *orderService) Checkout(ctx context.Context, userID int64, pubgID, nickname string, lines []CartLine) ([]model.Order, error) {
	pubgID = strings.TrimSpace(pubgID)
	if userID == 0 || pubgID == "" {
		return nil, errors.New("user and pubg id are required")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if _, err := s.users.Ensure(ctx, userID, ""); err != nil {
		return nil, err
	}

	byFulfillment := make(map[model.FulfillmentType]model.LineItems)
	var kinds []model.FulfillmentType
	for _, line := range lines {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrProductUnavailable)
		}
		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
			}
			return nil, err
		}
		if p.Status != model.ProductStatusActive {
			return nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, line.ProductID)
		}
		if _, ok := byFulfillment[p.Fulfillment]; !ok {
			kinds = append(kinds, p.Fulfillment)
		}
		byFulfillment[p.Fulfillment] = append(byFulfillment[p.Fulfillment], model.LineItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Qty:         line.Qty,
			Category:    p.Category,
			Fulfillment: p.Fulfillment,
		})
	}

	checkoutID := uuid.NewString()
	orders := make([]*model.Order, 0, len(kinds))
	for _, kind := range kinds {
		orders = append(orders, &model.Order{
			UserID:     userID,
			PubgID:     pubgID,
			Nickname:   nickname,
			Products:   byFulfillment[kind],
			Status:     model.OrderStatusUnpaid,
			CheckoutID: checkoutID,
		})
	}
	if err := s.orders.CreateBatch(ctx, orders); err != nil {
		return nil, err
	}

	created := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		created = append(created, *o)
	}
	return created, nil
}

func (s *orderService) Get(ctx context.Context, id uint64) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orders.List(ctx, f)
}

// Stats derives revenue from line items of paid orders; there is no stored
// total to drift from.
func (s *orderService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[model.OrderStatus]int64, len(counts))
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}

	paid, err := s.orders.FindByStatuses(ctx, []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusManualProcessing,
		model.OrderStatusDelivered,
	})
	if err != nil {
		return nil, err
	}
	var revenue int64
	for i := range paid {
		revenue += paid[i].Total()
	}
	return &Stats{ByStatus: byStatus, Revenue: revenue}, nil
}
