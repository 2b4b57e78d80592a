package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/ucbazaar/shop-backend/internal/payment"
	"github.com/ucbazaar/shop-backend/internal/service"
)

// paymentAckToken is the literal the gateway expects on both the liveness
// ping and a successfully processed notification.
const paymentAckToken = "YES"

type PaymentHandler struct {
	svc        service.OrderService
	merchantID string
	secret     string
}

func NewPaymentHandler(svc service.OrderService, merchantID, secret string) *PaymentHandler {
	return &PaymentHandler{svc: svc, merchantID: merchantID, secret: secret}
}

// Callback handles the form-encoded payment notification. Signature
// verification fails closed; terminal orders are acknowledged without
// reprocessing.
func (h *PaymentHandler) Callback(c echo.Context) error {
	if c.FormValue("status_check") != "" {
		return c.String(http.StatusOK, paymentAckToken)
	}

	merchantID := c.FormValue("MERCHANT_ID")
	amount := c.FormValue("AMOUNT")
	orderIDParam := c.FormValue("MERCHANT_ORDER_ID")
	sign := c.FormValue("SIGN")

	if merchantID != h.merchantID || !payment.Verify(merchantID, amount, h.secret, orderIDParam, sign) {
		log.WithFields(log.Fields{
			"merchant_id": merchantID,
			"order_id":    orderIDParam,
			"remote_ip":   c.RealIP(),
		}).Warn("payment callback signature mismatch")
		return c.String(http.StatusBadRequest, "wrong sign")
	}

	orderID, err := strconv.ParseUint(orderIDParam, 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "bad order id")
	}

	if _, err := h.svc.ConfirmPayment(c.Request().Context(), orderID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.String(http.StatusNotFound, "order not found")
		}
		log.WithFields(log.Fields{"order_id": orderID, "error": err}).Error("payment confirmation failed")
		return c.String(http.StatusInternalServerError, "error")
	}
	return c.String(http.StatusOK, paymentAckToken)
}
