package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/orders"
	"github.com/MarcGrol/storefront/services/paymentapi"
	"github.com/MarcGrol/storefront/services/payments"
)

type LocaleGetter interface {
	Get(c context.Context) string
}

type service struct {
	storage   mystorage.Storage
	orders    orders.Submitter
	payments  payments.Service
	widgets   map[string]paymentapi.Widget
	methods   []string
	registry  *paymentapi.Registry
	locale    LocaleGetter
	currency  string
	publisher mypublisher.Publisher
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(storage mystorage.Storage, orderSubmitter orders.Submitter, paymentService payments.Service,
	widgets []paymentapi.Widget, registry *paymentapi.Registry, locale LocaleGetter, currency string,
	publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {

	methods := []string{MethodCash}
	widgetsPerMethod := map[string]paymentapi.Widget{}
	for _, w := range widgets {
		methods = append(methods, w.Method())
		widgetsPerMethod[w.Method()] = w
	}

	return &service{
		storage:   storage,
		orders:    orderSubmitter,
		payments:  paymentService,
		widgets:   widgetsPerMethod,
		methods:   methods,
		registry:  registry,
		locale:    locale,
		currency:  currency,
		publisher: publisher,
		nower:     nower,
		uuider:    uuider,
		logger:    logger,
	}
}

func (s *service) View(c context.Context) View {
	return s.view(s.loadState(c), s.loadCart(c))
}

func (s *service) HandleChange(c context.Context, field string, value string) (View, error) {
	state := s.loadState(c)

	err := state.HandleChange(field, value)
	if err != nil {
		return s.view(state, s.loadCart(c)), err
	}

	err = s.saveState(c, state)
	if err != nil {
		return s.view(state, s.loadCart(c)), err
	}

	return s.view(state, s.loadCart(c)), nil
}

// SetMethod selects the payment method. A held preference and any open
// widget are discarded in the same step.
func (s *service) SetMethod(c context.Context, method string) (View, error) {
	state := s.loadState(c)

	if method != MethodCash && s.widgets[method] == nil {
		return s.view(state, s.loadCart(c)), myerrors.NewInvalidInputError(fmt.Errorf("unsupported payment method %s", method))
	}

	if state.Widget != nil {
		s.registry.Remove(state.Widget.UID)
	}
	state.discardWidget()
	state.Method = method

	err := s.saveState(c, state)
	if err != nil {
		return s.view(state, s.loadCart(c)), err
	}

	return s.view(state, s.loadCart(c)), nil
}

// Submit places the order. The order is always recorded first; cash
// completes right away, a widget method mounts the hosted payment form and
// completes through its callbacks.
func (s *service) Submit(c context.Context, baseURL string) (View, error) {
	sessionUID := mycontext.SessionUIDFromContext(c)

	state := s.loadState(c)
	cartManager := s.loadCart(c)

	if cartManager.IsEmpty() {
		return s.view(state, cartManager), nil
	}

	if s.widgetOpen(state) {
		return s.view(state, cartManager), myerrors.NewInvalidInputError(fmt.Errorf("payment already in progress"))
	}
	if state.View == ViewWidget {
		state.discardWidget()
	}

	if !state.Validate() {
		err := s.saveState(c, state)
		if err != nil {
			return s.view(state, cartManager), err
		}
		return s.view(state, cartManager), myerrors.NewInvalidInputError(errors.New(state.Error))
	}

	order := s.newOrder(state.Form, cartManager)

	_, err := s.orders.Submit(c, toRecordedOrder(order))
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error submitting order %s: %s", order.UID, err)
		return s.fail(c, state, cartManager, orderFailedMessage, myerrors.NewUnavailableError(err))
	}
	state.Order = nil

	s.publish(c, checkoutevents.OrderSubmitted{
		OrderUID:    order.UID,
		SessionUID:  sessionUID,
		Method:      state.Method,
		TotalAmount: order.Total,
		Currency:    order.Currency,
		ItemCount:   len(order.Items),
	})

	err = mystorage.SetJSON(c, s.storage, mystorage.KeyLastOrder, order)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error storing last order %s: %s", order.UID, err)
	}

	if state.Method == MethodCash {
		cartManager.ClearCart(c)
		order.Method = MethodCash
		return s.confirm(c, state, order, nil)
	}

	return s.startWidget(c, state, cartManager, order, baseURL)
}

func (s *service) startWidget(c context.Context, state State, cartManager *cart.Manager, order Order, baseURL string) (View, error) {
	sessionUID := mycontext.SessionUIDFromContext(c)

	widget, found := s.widgets[state.Method]
	if !found {
		return s.view(state, cartManager), myerrors.NewInvalidInputError(fmt.Errorf("unsupported payment method %s", state.Method))
	}

	if state.PreferenceID == "" {
		preferenceID, err := s.payments.CreatePreference(c, toPaymentItems(cartManager.Items(), s.currency))
		if err != nil {
			s.logger.Log(c, sessionUID, mylog.SeverityError, "Error creating preference for order %s: %s", order.UID, err)
			return s.fail(c, state, cartManager, paymentStartFailMessage, myerrors.NewUnavailableError(err))
		}
		state.PreferenceID = preferenceID
	}

	handleUID := ""
	config := paymentapi.Config{
		PreferenceID: state.PreferenceID,
		Reference:    order.UID,
		Buyer:        buyerOf(state.Form),
		Amount:       order.Total,
		Currency:     order.Currency,
		Locale:       s.locale.Get(c),
		SessionUID:   sessionUID,
		Items:        toWidgetItems(order.Items),
		BaseURL:      baseURL,
		OnSuccess: func(c context.Context, result json.RawMessage) {
			s.onWidgetSuccess(mycontext.WithSessionUID(c, sessionUID), handleUID, result)
		},
		OnError: func(c context.Context, err error) {
			s.onWidgetError(mycontext.WithSessionUID(c, sessionUID), handleUID, err)
		},
		OnCancel: func(c context.Context) {
			s.onWidgetCancel(mycontext.WithSessionUID(c, sessionUID), handleUID)
		},
	}

	handle, err := widget.Mount(c, config)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error mounting %s widget for order %s: %s", widget.Method(), order.UID, err)
		return s.fail(c, state, cartManager, paymentStartFailMessage, myerrors.NewUnavailableError(err))
	}
	handleUID = handle.UID
	s.registry.Add(handle, config)

	state.View = ViewWidget
	state.Widget = &handle
	state.PendingOrder = &order
	state.Error = ""

	err = s.saveState(c, state)
	if err != nil {
		s.registry.Remove(handle.UID)
		return s.view(state, cartManager), err
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Mounted %s widget %s for order %s", handle.Method, handle.UID, order.UID)

	return s.view(state, cartManager), nil
}

func (s *service) onWidgetSuccess(c context.Context, handleUID string, result json.RawMessage) {
	sessionUID := mycontext.SessionUIDFromContext(c)

	state := s.loadState(c)
	if !state.isMounted(handleUID) {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Ignoring success of widget %s that is no longer open", handleUID)
		return
	}

	order := *state.PendingOrder
	order.Method = state.Widget.Method
	order.PaymentResult = result

	// the cart is only emptied once the confirmation is stored
	_, err := s.confirm(c, state, order, result)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error confirming order %s: %s", order.UID, err)
		return
	}

	s.loadCart(c).ClearCart(c)
}

func (s *service) onWidgetError(c context.Context, handleUID string, err error) {
	sessionUID := mycontext.SessionUIDFromContext(c)

	s.logger.Log(c, sessionUID, mylog.SeverityError, "Payment error for widget %s: %s", handleUID, err)

	state := s.loadState(c)
	if !state.isMounted(handleUID) {
		return
	}

	state.Error = paymentFailedMessage
	err = s.saveState(c, state)
	if err != nil {
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error storing checkout: %s", err)
	}
}

func (s *service) onWidgetCancel(c context.Context, handleUID string) {
	state := s.loadState(c)
	if !state.isMounted(handleUID) {
		return
	}

	err := s.closeWidget(c, state, checkoutevents.CheckoutStatusCancelled)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error storing checkout: %s", err)
	}
}

// CloseWidget returns to the form without paying. The cart and the stored
// last order are left as they are.
func (s *service) CloseWidget(c context.Context) (View, error) {
	state := s.loadState(c)

	if state.View == ViewWidget && state.Widget != nil {
		s.registry.Remove(state.Widget.UID)
		err := s.closeWidget(c, state, checkoutevents.CheckoutStatusCancelled)
		if err != nil {
			return s.View(c), err
		}
	}

	return s.View(c), nil
}

func (s *service) closeWidget(c context.Context, state State, status checkoutevents.CheckoutStatus) error {
	orderUID := ""
	if state.PendingOrder != nil {
		orderUID = state.PendingOrder.UID
	}
	method := state.Method

	state.discardWidget()
	err := s.saveState(c, state)
	if err != nil {
		return err
	}

	s.publish(c, checkoutevents.CheckoutCompleted{
		OrderUID:       orderUID,
		SessionUID:     mycontext.SessionUIDFromContext(c),
		Method:         method,
		CheckoutStatus: status,
	})

	return nil
}

// Confirmation returns the most recent order: the one confirmed in this
// checkout, or else the last order stored.
func (s *service) Confirmation(c context.Context) (Summary, error) {
	state := s.loadState(c)
	if state.Order != nil {
		return newSummary(*state.Order), nil
	}

	order := Order{}
	found, err := mystorage.GetJSON(c, s.storage, mystorage.KeyLastOrder, &order)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error loading last order: %s", err)
	}
	if err != nil || !found {
		return Summary{}, myerrors.NewNotFoundError(errors.New(noOrderFoundMessage))
	}

	return newSummary(order), nil
}

func (s *service) confirm(c context.Context, state State, order Order, result json.RawMessage) (View, error) {
	state.discardWidget()
	state.View = ViewConfirmation
	state.Error = ""
	state.Order = &order

	err := s.saveState(c, state)
	if err != nil {
		return View{}, err
	}

	s.publish(c, checkoutevents.CheckoutCompleted{
		OrderUID:              order.UID,
		SessionUID:            mycontext.SessionUIDFromContext(c),
		Method:                order.Method,
		CheckoutStatus:        checkoutevents.CheckoutStatusSuccess,
		CheckoutStatusDetails: string(result),
	})

	s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Order %s confirmed (%s)", order.UID, order.Method)

	return View{
		View:      ViewConfirmation,
		Methods:   s.methods,
		Method:    state.Method,
		Form:      state.Form,
		Items:     []cart.LineItem{},
		TotalText: totalText(0),
		Order:     &order,
	}, nil
}

func (s *service) fail(c context.Context, state State, cartManager *cart.Manager, message string, cause error) (View, error) {
	state.Error = message
	err := s.saveState(c, state)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error storing checkout: %s", err)
	}
	return s.view(state, cartManager), cause
}

func (s *service) view(state State, cartManager *cart.Manager) View {
	v := View{
		View:         state.View,
		Methods:      s.methods,
		Method:       state.Method,
		Form:         state.Form,
		Error:        state.Error,
		Items:        cartManager.Items(),
		Total:        cartManager.Total(),
		TotalText:    totalText(cartManager.Total()),
		PreferenceID: state.PreferenceID,
		Widget:       state.Widget,
	}

	if state.View == ViewWidget && !s.widgetOpen(state) {
		v.View = ViewForm
		v.Widget = nil
		v.PreferenceID = ""
	}

	if cartManager.IsEmpty() {
		v.View = ViewEmpty
	} else if state.View == ViewConfirmation {
		v.View = ViewForm
	}

	return v
}

// widgetOpen tells whether the widget of the state can still be settled. A
// widget that is no longer registered, after a failed confirmation or a
// restart, is treated as closed.
func (s *service) widgetOpen(state State) bool {
	if state.View != ViewWidget || state.Widget == nil {
		return false
	}
	_, _, found := s.registry.Get(state.Widget.UID)
	return found
}

func (s *service) newOrder(form Form, cartManager *cart.Manager) Order {
	items := []OrderItem{}
	for _, item := range cartManager.Items() {
		items = append(items, OrderItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	return Order{
		UID:       s.uuider.Create(),
		CreatedAt: s.nower.Now(),
		User:      form,
		Items:     items,
		Total:     cartManager.Total(),
		Currency:  s.currency,
	}
}

func (s *service) loadCart(c context.Context) *cart.Manager {
	m := cart.NewManager(s.storage, s.logger)
	m.Load(c)
	return m
}

func (s *service) loadState(c context.Context) State {
	state := newState()
	_, err := mystorage.GetJSON(c, s.storage, mystorage.KeyCheckout, &state)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error loading checkout: %s", err)
		return newState()
	}
	return state
}

func (s *service) saveState(c context.Context, state State) error {
	err := mystorage.SetJSON(c, s.storage, mystorage.KeyCheckout, state)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing checkout: %w", err))
	}
	return nil
}

func (s *service) publish(c context.Context, event mypublisher.Event) {
	err := s.publisher.Publish(c, checkoutevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}

func (s State) isMounted(handleUID string) bool {
	return s.View == ViewWidget && s.Widget != nil && s.Widget.UID == handleUID && s.PendingOrder != nil
}

func buyerOf(form Form) paymentapi.Buyer {
	names := strings.Split(form.Name, " ")
	buyer := paymentapi.Buyer{
		FirstName: names[0],
		Email:     form.Email,
	}
	if len(names) > 1 {
		buyer.LastName = names[1]
	}
	return buyer
}

func toRecordedOrder(order Order) orders.Order {
	items := []orders.Item{}
	for _, item := range order.Items {
		items = append(items, orders.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	return orders.Order{
		User: orders.Customer{
			Name:    order.User.Name,
			Email:   order.User.Email,
			Address: order.User.Address,
		},
		Items: items,
		Total: order.Total,
	}
}

func toPaymentItems(lineItems []cart.LineItem, currency string) []payments.Item {
	items := []payments.Item{}
	for _, item := range lineItems {
		items = append(items, payments.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Currency: currency,
			Image:    item.Image,
		})
	}
	return items
}

func toWidgetItems(orderItems []OrderItem) []paymentapi.Item {
	items := []paymentapi.Item{}
	for _, item := range orderItems {
		items = append(items, paymentapi.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return items
}
