package checkoutevents

const (
	TopicName          = "checkout"
	orderSubmittedName = TopicName + ".orderSubmitted"
	completedName      = TopicName + ".completed"
)

type OrderSubmitted struct {
	OrderUID    string
	SessionUID  string
	Method      string
	TotalAmount int64
	Currency    string
	ItemCount   int
}

func (e OrderSubmitted) GetEventTypeName() string {
	return orderSubmittedName
}

func (e OrderSubmitted) GetAggregateName() string {
	return e.OrderUID
}

type CheckoutStatus string

const (
	CheckoutStatusUndefined CheckoutStatus = ""
	CheckoutStatusSuccess   CheckoutStatus = "success"
	CheckoutStatusCancelled CheckoutStatus = "cancelled"
	CheckoutStatusError     CheckoutStatus = "error"
)

type CheckoutCompleted struct {
	OrderUID              string
	SessionUID            string
	Method                string
	CheckoutStatus        CheckoutStatus
	CheckoutStatusDetails string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return completedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.OrderUID
}
