package services

import (
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"go.uber.org/zap"
)

const dateLayout = "Jan 2, 2006"

// Enqueuer accepts messages for asynchronous delivery
type Enqueuer interface {
	Enqueue(m Message) bool
}

// Notifier turns committed workflow transitions into customer and operations
// messages. It never blocks the caller and never reports delivery errors.
type Notifier struct {
	queue      Enqueuer
	opsMailbox string
	logger     *zap.Logger
}

func NewNotifier(queue Enqueuer, opsMailbox string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{queue: queue, opsMailbox: opsMailbox, logger: logger.Named("notifier")}
}

// Notify enqueues the messages for evt, if any
func (n *Notifier) Notify(evt models.TransitionEvent) {
	for _, m := range n.messagesFor(evt) {
		m.Event = fmt.Sprintf("%s.%s", evt.Kind, evt.Action)
		n.queue.Enqueue(m)
	}
}

func (n *Notifier) messagesFor(evt models.TransitionEvent) []Message {
	switch e := evt.Entity.(type) {
	case *models.Booking:
		return n.bookingMessages(evt, e)
	case *models.CargoDispatchDetail:
		return n.cargoMessages(evt, e)
	case *models.DeliveryRequest:
		return n.deliveryMessages(evt, e)
	case *models.Invoice:
		return n.invoiceMessages(evt, e)
	}
	return nil
}

func email(userID, subject, body string) Message {
	return Message{Channel: ChannelEmail, UserID: userID, Subject: subject, Body: body}
}

func bookingFields(b *models.Booking) []field {
	return []field{
		{"Booking", b.ID},
		{"Warehouse", b.WarehouseID},
		{"Space", fmt.Sprintf("%.0f sq ft", b.RequiredSpace)},
		{"Start date", b.StartDate.Format(dateLayout)},
		{"End date", b.EndDate.Format(dateLayout)},
		{"Total", money(b.TotalAmount)},
	}
}

func (n *Notifier) bookingMessages(evt models.TransitionEvent, b *models.Booking) []Message {
	switch evt.Action {
	case models.ActionCreate:
		// sent at creation, before staff confirmation
		return []Message{email(b.CustomerID, "Booking Confirmation",
			renderEmail("Booking Confirmation", "We have received your booking. Your warehouse space is reserved.",
				bookingFields(b), "Our team will confirm the booking shortly."))}
	case models.ActionConfirm:
		return []Message{email(b.CustomerID, "Booking Confirmed",
			renderEmail("Booking Confirmed", "Your booking has been confirmed by our team.",
				bookingFields(b), "Thank you for choosing us."))}
	case models.ActionCancel, models.ActionReject:
		fields := bookingFields(b)
		if evt.Reason != "" {
			fields = append(fields, field{"Reason", evt.Reason})
		}
		return []Message{email(b.CustomerID, "Booking Cancelled",
			renderEmail("Booking Cancelled", "Your booking has been cancelled.",
				fields, "Contact us if you have any questions."))}
	}
	return nil
}

func (n *Notifier) cargoMessages(evt models.TransitionEvent, c *models.CargoDispatchDetail) []Message {
	if evt.Action != models.ActionApprove {
		return nil
	}
	if n.opsMailbox == "" {
		n.logger.Warn("cargo approval not announced: no operations mailbox configured", zap.String("cargo_id", c.ID))
		return nil
	}
	body := renderEmail("Cargo Approved", "A cargo dispatch has been approved and is ready for processing.",
		[]field{
			{"Cargo", c.ID},
			{"Booking", c.BookingID},
			{"Item", c.ItemDescription},
			{"Quantity", fmt.Sprintf("%d", c.Quantity)},
			{"Weight", fmt.Sprintf("%.2f kg", c.Weight)},
			{"Dimensions", c.Dimensions},
			{"Approved by", evt.ActorID},
		}, "Please schedule warehouse handling.")
	return []Message{{Channel: ChannelEmail, To: n.opsMailbox, Subject: "Cargo Approved: " + c.ID, Body: body}}
}

func deliveryFields(d *models.DeliveryRequest) []field {
	fields := []field{
		{"Tracking number", d.TrackingNumber},
		{"Address", d.DeliveryAddress},
		{"Preferred date", d.PreferredDate.Format(dateLayout)},
		{"Urgency", string(d.Urgency)},
	}
	if d.ScheduledDate != nil {
		fields = append(fields, field{"Scheduled date", d.ScheduledDate.Format(dateLayout)})
	}
	if d.AssignedDriver != nil {
		fields = append(fields, field{"Driver", *d.AssignedDriver})
	}
	return fields
}

func (n *Notifier) deliveryMessages(evt models.TransitionEvent, d *models.DeliveryRequest) []Message {
	switch evt.Action {
	case models.ActionCreate:
		return []Message{email(d.CustomerID, "Delivery Request Received - "+d.TrackingNumber,
			renderEmail("Delivery Request Received", "Your delivery request has been registered.",
				deliveryFields(d), "Use your tracking number to follow the delivery."))}
	case models.ActionSchedule:
		return []Message{email(d.CustomerID, "Delivery Scheduled - "+d.TrackingNumber,
			renderEmail("Delivery Scheduled", "Your delivery has been scheduled.",
				deliveryFields(d), "We will let you know when it is on the way."))}
	case models.ActionDispatch:
		return []Message{
			email(d.CustomerID, "Your Delivery Is On The Way - "+d.TrackingNumber,
				renderEmail("Delivery Dispatched", "Your delivery has left the warehouse.",
					deliveryFields(d), "Track it with the number above.")),
			{Channel: ChannelSMS, UserID: d.CustomerID,
				Body: fmt.Sprintf("Your delivery %s is on the way.", d.TrackingNumber)},
		}
	case models.ActionComplete:
		fields := deliveryFields(d)
		if d.DeliveryNotes != nil {
			fields = append(fields, field{"Notes", *d.DeliveryNotes})
		}
		return []Message{email(d.CustomerID, "Delivery Completed - "+d.TrackingNumber,
			renderEmail("Delivery Completed", "Your delivery has been completed.",
				fields, "Thank you for your business."))}
	}
	return nil
}

func invoiceFields(inv *models.Invoice) []field {
	fields := []field{
		{"Invoice", inv.InvoiceNumber},
		{"Amount", money(inv.Amount)},
		{"Due date", inv.DueDate.Format(dateLayout)},
	}
	if inv.PaidAt != nil {
		fields = append(fields, field{"Paid on", inv.PaidAt.Format(dateLayout)})
	}
	if inv.PaymentMethod != nil {
		fields = append(fields, field{"Payment method", *inv.PaymentMethod})
	}
	if inv.TransactionID != nil {
		fields = append(fields, field{"Transaction", *inv.TransactionID})
	}
	return fields
}

func (n *Notifier) invoiceMessages(evt models.TransitionEvent, inv *models.Invoice) []Message {
	switch evt.Action {
	case models.ActionSend:
		return []Message{email(inv.CustomerID, "Invoice "+inv.InvoiceNumber,
			renderEmail("New Invoice", "A new invoice has been issued for your booking.",
				invoiceFields(inv), "Please pay by the due date."))}
	case models.ActionMarkPaid:
		return []Message{email(inv.CustomerID, "Payment Receipt - "+inv.InvoiceNumber,
			renderEmail("Payment Receipt", "We have received your payment.",
				invoiceFields(inv), "Thank you."))}
	case models.ActionMarkOverdue:
		return []Message{email(inv.CustomerID, "Invoice Overdue - "+inv.InvoiceNumber,
			renderEmail("Invoice Overdue", "The invoice below is past its due date.",
				invoiceFields(inv), "Please arrange payment as soon as possible."))}
	case models.ActionPay:
		return []Message{email(inv.CustomerID, "Payment Confirmation - "+inv.InvoiceNumber,
			renderEmail("Payment Confirmation", "Your payment has been recorded.",
				invoiceFields(inv), "Thank you."))}
	}
	return nil
}
