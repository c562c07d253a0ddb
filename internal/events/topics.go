package events

// Topic constants for domain events emitted by the floor service.
const (
	TopicOrderCreated          = "order.created"
	TopicOrderBilled           = "order.billed"
	TopicOrderAbandoned        = "order.abandoned"
	TopicBillDiscountApplied   = "bill.discount_applied"
	TopicBillPaid              = "bill.paid"
	TopicBillCancelled         = "bill.cancelled"
	TopicWaiterCalled          = "waiter.called"
	TopicWaiterCallAcknowledge = "waiter.call_acknowledged"
)

// DefaultTopics returns the canonical list of topics notifiers may subscribe to.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderBilled,
		TopicOrderAbandoned,
		TopicBillDiscountApplied,
		TopicBillPaid,
		TopicBillCancelled,
		TopicWaiterCalled,
		TopicWaiterCallAcknowledge,
	}
}
