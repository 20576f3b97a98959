// Package listeners wires domain events to their side effects: customer
// emails and low-stock alerts. Side effects never run inside the
// transactions that fire the events.
package listeners

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/config"
	"github.com/shashiranjanraj/shopctl/pkg/event"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
	"github.com/shashiranjanraj/shopctl/pkg/notification"
)

var db *gorm.DB

// Boot registers every listener.
func Boot(d *gorm.DB) {
	db = d
	event.Listen(services.EventOrderCreated, onOrderCreated)
	event.Listen(services.EventOrderPaid, onOrderPaid)
}

func ownerEmail(clientID uint) (string, error) {
	var client models.Client
	if err := db.First(&client, clientID).Error; err != nil {
		return "", err
	}
	var user models.User
	if err := db.First(&user, client.UserID).Error; err != nil {
		return "", err
	}
	return user.Email, nil
}

func onOrderCreated(payload interface{}) {
	order, ok := payload.(*models.Order)
	if !ok {
		return
	}

	email, err := ownerEmail(order.ClientID)
	if err != nil {
		logger.Warn("order.created: owner lookup failed", "order_id", order.ID, "error", err)
		return
	}

	notification.SendAsync(email, &orderReceivedNotification{Order: order})
}

func onOrderPaid(payload interface{}) {
	order, ok := payload.(*models.Order)
	if !ok {
		return
	}

	if email, err := ownerEmail(order.ClientID); err == nil {
		notification.SendAsync(email, &orderPaidNotification{Order: order})
	} else {
		logger.Warn("order.paid: owner lookup failed", "order_id", order.ID, "error", err)
	}

	checkLowStock(order)
}

func lowStockThreshold() int {
	// LOW_STOCK_THRESHOLD <= 0 disables the alert.
	var n int
	fmt.Sscanf(config.Get("LOW_STOCK_THRESHOLD", "5"), "%d", &n)
	return n
}

func checkLowStock(order *models.Order) {
	threshold := lowStockThreshold()
	if threshold <= 0 {
		return
	}

	adminEmail := config.Get("ADMIN_EMAIL", "")

	for _, item := range order.Items {
		var product models.Product
		if err := db.First(&product, item.ProductID).Error; err != nil {
			continue
		}
		if product.Stock >= threshold {
			continue
		}

		logger.Warn("low stock", "product_id", product.ID, "stock", product.Stock)
		if adminEmail != "" {
			notification.SendAsync(adminEmail, &lowStockNotification{Product: &product})
		}
	}
}

// ── Notifications ────────────────────────────────────────────────────────────

type orderReceivedNotification struct{ Order *models.Order }

func (n *orderReceivedNotification) Via() []string { return []string{"mail"} }

func (n *orderReceivedNotification) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Order #%d received", n.Order.ID),
		Body: fmt.Sprintf(
			"<p>Your order <strong>#%d</strong> was received.</p><p>Total: %s</p><p>Complete the payment to start preparation.</p>",
			n.Order.ID, n.Order.Total.StringFixed(2)),
	}
}

type orderPaidNotification struct{ Order *models.Order }

func (n *orderPaidNotification) Via() []string { return []string{"mail"} }

func (n *orderPaidNotification) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Order #%d confirmed", n.Order.ID),
		Body: fmt.Sprintf(
			"<p>Payment confirmed for order <strong>#%d</strong>. It is now in preparation.</p>",
			n.Order.ID),
	}
}

type lowStockNotification struct{ Product *models.Product }

func (n *lowStockNotification) Via() []string { return []string{"mail"} }

func (n *lowStockNotification) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Low stock: %s", n.Product.Name),
		Body: fmt.Sprintf(
			"<p>Product <strong>%s</strong> (#%d) is down to %d units.</p>",
			n.Product.Name, n.Product.ID, n.Product.Stock),
	}
}
