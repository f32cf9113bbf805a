package workflow

import (
	"context"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/policy"
)

// DashboardStats counts every workflow entity by status
func (e *Engine) DashboardStats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if err := e.gate(actor, policy.DashboardStats); err != nil {
		return nil, err
	}
	stats := models.NewDashboardStats()
	counts := []struct {
		kind models.EntityKind
		into map[string]int
	}{
		{models.KindQuote, stats.QuotesByStatus},
		{models.KindBooking, stats.BookingsByStatus},
		{models.KindCargo, stats.CargoByStatus},
		{models.KindDelivery, stats.DeliveriesByStatus},
		{models.KindInvoice, stats.InvoicesByStatus},
	}
	for _, c := range counts {
		m, err := e.store.CountByStatus(ctx, c.kind)
		if err != nil {
			return nil, storeErr(err, c.kind)
		}
		for status, n := range m {
			c.into[status] = n
		}
	}
	paid, outstanding, err := e.store.InvoiceTotals(ctx)
	if err != nil {
		return nil, storeErr(err, models.KindInvoice)
	}
	stats.PaidRevenue = paid
	stats.OutstandingAmount = outstanding
	stats.GeneratedAt = e.now()
	return stats, nil
}
