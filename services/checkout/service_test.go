package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/catalog"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/orders"
	"github.com/MarcGrol/storefront/services/paymentapi"
	"github.com/MarcGrol/storefront/services/payments"
)

type fixedLocale string

func (l fixedLocale) Get(c context.Context) string {
	return string(l)
}

// flakyStorage fails to store the checkout while failCheckout is set.
type flakyStorage struct {
	mystorage.Storage
	failCheckout bool
}

func (s *flakyStorage) SetItem(c context.Context, key string, value string) error {
	if s.failCheckout && key == mystorage.KeyCheckout {
		return errors.New("datastore unavailable")
	}
	return s.Storage.SetItem(c, key, value)
}

type testContext struct {
	c         context.Context
	storage   *flakyStorage
	submitter *orders.MockSubmitter
	payments  *payments.MockService
	widget    *paymentapi.MockWidget
	publisher *mypublisher.MockPublisher
	registry  *paymentapi.Registry
	sut       *service
}

func TestCheckoutService(t *testing.T) {

	t.Run("Empty cart shows empty view", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewEmpty, view.View)
		assert.Equal(t, ViewEmpty, tc.sut.View(tc.c).View)
	})

	t.Run("Incomplete form is rejected without side effects", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		_, err := tc.sut.HandleChange(tc.c, "name", "A")
		require.NoError(t, err)

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.Error(t, err)
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
		assert.Equal(t, "Please fill in all fields", view.Error)
		assert.Equal(t, ViewForm, view.View)
		assert.Len(t, view.Items, 2)
		assert.Equal(t, "Please fill in all fields", tc.sut.View(tc.c).Error)
	})

	t.Run("Cash checkout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		tc.givenForm(t)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), orders.Order{
			User: orders.Customer{Name: "A", Email: "a@a.com", Address: "Addr"},
			Items: []orders.Item{
				{ID: "1", Name: "T-shirt", Price: 100, Quantity: 2},
				{ID: "2", Name: "Socks", Price: 50, Quantity: 1},
			},
			Total: 250,
		}).Return(orders.Acknowledgement(`{"id":101}`), nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewConfirmation, view.View)
		require.NotNil(t, view.Order)
		assert.Equal(t, MethodCash, view.Order.Method)
		assert.Equal(t, int64(250), view.Order.Total)
		assert.True(t, tc.cart().IsEmpty())

		summary, err := tc.sut.Confirmation(tc.c)
		assert.NoError(t, err)
		assert.Equal(t, "Total: $250", summary.TotalText)
		assert.Equal(t, []string{"T-shirt x 2 $200", "Socks x 1 $50"}, summary.Lines)

		lastOrder := Order{}
		found, err := mystorage.GetJSON(tc.c, tc.storage, mystorage.KeyLastOrder, &lastOrder)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "order_1", lastOrder.UID)
	})

	t.Run("Order submission fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		tc.givenForm(t)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.Error(t, err)
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
		assert.Equal(t, orderFailedMessage, view.Error)
		assert.Len(t, tc.cart().Items(), 2)

		found, err := mystorage.GetJSON(tc.c, tc.storage, mystorage.KeyLastOrder, &Order{})
		assert.NoError(t, err)
		assert.False(t, found)

		_, err = tc.sut.Confirmation(tc.c)
		assert.Equal(t, 404, myerrors.GetHTTPStatus(err))
	})

	t.Run("Widget payment succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		tc.givenForm(t)
		_, err := tc.sut.HandleChange(tc.c, "name", "Ana Diaz")
		require.NoError(t, err)
		_, err = tc.sut.SetMethod(tc.c, "mercadopago")
		require.NoError(t, err)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil)
		tc.payments.EXPECT().CreatePreference(gomock.Any(), []payments.Item{
			{ID: "1", Name: "T-shirt", Price: 100, Quantity: 2, Currency: "CLP"},
			{ID: "2", Name: "Socks", Price: 50, Quantity: 1, Currency: "CLP"},
		}).Return("pref_1", nil)
		config := tc.expectMount()
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewWidget, view.View)
		assert.Equal(t, "pref_1", view.PreferenceID)
		require.NotNil(t, view.Widget)
		assert.Equal(t, "handle_1", view.Widget.UID)
		assert.Equal(t, "pref_1", config.PreferenceID)
		assert.Equal(t, int64(250), config.Amount)
		assert.Equal(t, "es", config.Locale)
		assert.Equal(t, paymentapi.Buyer{FirstName: "Ana", LastName: "Diaz", Email: "a@a.com"}, config.Buyer)
		assert.Len(t, tc.cart().Items(), 2)

		// when
		err = tc.registry.Settle(context.TODO(), "handle_1", paymentapi.StatusSuccess, json.RawMessage(`{"status":"approved"}`))

		// then
		assert.NoError(t, err)
		assert.True(t, tc.cart().IsEmpty())
		summary, err := tc.sut.Confirmation(tc.c)
		assert.NoError(t, err)
		assert.Equal(t, "mercadopago", summary.Order.Method)
		assert.JSONEq(t, `{"status":"approved"}`, string(summary.Order.PaymentResult))
		assert.Equal(t, ViewEmpty, tc.sut.View(tc.c).View)
	})

	t.Run("Confirmation shows the newest order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		tc.givenForm(t)
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil).Times(2)
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(4)
		_, err := tc.sut.Submit(tc.c, "http://localhost:8080")
		require.NoError(t, err)

		tc.cart().AddToCart(tc.c, catalog.Product{ID: "2", Name: "Socks", Price: 50})
		_, err = tc.sut.SetMethod(tc.c, "mercadopago")
		require.NoError(t, err)
		tc.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).Return("pref_1", nil)
		tc.expectMount()
		_, err = tc.sut.Submit(tc.c, "http://localhost:8080")
		require.NoError(t, err)

		// when
		_, err = tc.sut.CloseWidget(tc.c)
		require.NoError(t, err)
		summary, err := tc.sut.Confirmation(tc.c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, int64(50), summary.Order.Total)
		assert.Equal(t, "Total: $50", summary.TotalText)
	})

	t.Run("Failed confirmation keeps cart and reopens form", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenMountedWidget(t)
		tc.storage.failCheckout = true

		// when
		err := tc.registry.Settle(context.TODO(), "handle_1", paymentapi.StatusSuccess, json.RawMessage(`{"status":"approved"}`))

		// then
		assert.NoError(t, err)
		assert.Len(t, tc.cart().Items(), 2)

		// given
		tc.storage.failCheckout = false

		// then
		view := tc.sut.View(tc.c)
		assert.Equal(t, ViewForm, view.View)
		assert.Nil(t, view.Widget)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil)
		tc.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).Return("pref_2", nil)
		tc.expectMount()
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		view, err = tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewWidget, view.View)
		assert.Equal(t, "pref_2", view.PreferenceID)
	})

	t.Run("Resubmitting an open widget is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenMountedWidget(t)

		// when
		_, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Widget payment fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenMountedWidget(t)

		// when
		err := tc.registry.Fail(context.TODO(), "handle_1", errors.New("card declined"))

		// then
		assert.NoError(t, err)
		view := tc.sut.View(tc.c)
		assert.Equal(t, ViewWidget, view.View)
		assert.Equal(t, paymentFailedMessage, view.Error)
		assert.Len(t, view.Items, 2)
	})

	t.Run("Closing widget returns to form", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		config := tc.givenMountedWidget(t)

		// expect
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		view, err := tc.sut.CloseWidget(tc.c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewForm, view.View)
		assert.Empty(t, view.PreferenceID)
		assert.Nil(t, view.Widget)
		assert.Len(t, view.Items, 2)
		_, _, found := tc.registry.Get("handle_1")
		assert.False(t, found)

		// when
		config.OnSuccess(context.TODO(), json.RawMessage(`{}`))

		// then
		assert.Len(t, tc.cart().Items(), 2)
		assert.Equal(t, ViewForm, tc.sut.View(tc.c).View)
	})

	t.Run("Changing method discards preference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenMountedWidget(t)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil)
		tc.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).Return("pref_2", nil)
		tc.expectMount()
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		view, err := tc.sut.SetMethod(tc.c, MethodCash)

		// then
		assert.NoError(t, err)
		assert.Equal(t, ViewForm, view.View)
		assert.Empty(t, view.PreferenceID)

		// when
		_, err = tc.sut.SetMethod(tc.c, "mercadopago")
		require.NoError(t, err)
		view, err = tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.NoError(t, err)
		assert.Equal(t, "pref_2", view.PreferenceID)
	})

	t.Run("Unsupported method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// when
		_, err := tc.sut.SetMethod(tc.c, "bitcoin")

		// then
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
		assert.Equal(t, MethodCash, tc.sut.View(tc.c).Method)
	})

	t.Run("Preference creation fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		tc.givenCart()
		tc.givenForm(t)
		_, err := tc.sut.SetMethod(tc.c, "mercadopago")
		require.NoError(t, err)

		// expect
		tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)
		tc.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).Return("", payments.ErrCreatePreference)

		// when
		view, err := tc.sut.Submit(tc.c, "http://localhost:8080")

		// then
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
		assert.Equal(t, ViewForm, view.View)
		assert.Equal(t, paymentStartFailMessage, view.Error)
		assert.Len(t, tc.cart().Items(), 2)
	})

	t.Run("No order to confirm", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// when
		_, err := tc.sut.Confirmation(tc.c)

		// then
		assert.Error(t, err)
		assert.Equal(t, 404, myerrors.GetHTTPStatus(err))
		assert.Contains(t, err.Error(), noOrderFoundMessage)
	})

	t.Run("Confirmation falls back to last order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		tc := setupService(t, ctrl)

		// given
		err := mystorage.SetJSON(tc.c, tc.storage, mystorage.KeyLastOrder, Order{
			UID:   "order_0",
			Items: []OrderItem{{ID: "1", Name: "T-shirt", Price: 1250, Quantity: 2}},
			Total: 2500,
		})
		require.NoError(t, err)

		// when
		summary, err := tc.sut.Confirmation(tc.c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "order_0", summary.Order.UID)
		assert.Equal(t, "Total: $2,500", summary.TotalText)
	})
}

func setupService(t *testing.T, ctrl *gomock.Controller) *testContext {
	c := mycontext.WithSessionUID(context.TODO(), "session_123")

	store, cleanup, err := mystore.NewInMemoryStore[mystorage.Item](c)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("order_1").AnyTimes()
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	widget := paymentapi.NewMockWidget(ctrl)
	widget.EXPECT().Method().Return("mercadopago").AnyTimes()

	tc := &testContext{
		c:         c,
		storage:   &flakyStorage{Storage: mystorage.New(store)},
		submitter: orders.NewMockSubmitter(ctrl),
		payments:  payments.NewMockService(ctrl),
		widget:    widget,
		publisher: mypublisher.NewMockPublisher(ctrl),
		registry:  paymentapi.NewRegistry(),
	}
	tc.sut = newService(tc.storage, tc.submitter, tc.payments, []paymentapi.Widget{widget}, tc.registry,
		fixedLocale("es"), "CLP", tc.publisher, nower, uuider, mylog.New("checkout"))

	return tc
}

func (tc *testContext) cart() *cart.Manager {
	m := cart.NewManager(tc.storage, mylog.New("cart"))
	m.Load(tc.c)
	return m
}

func (tc *testContext) givenCart() {
	m := tc.cart()
	m.AddToCart(tc.c, catalog.Product{ID: "1", Name: "T-shirt", Price: 100})
	m.AddToCart(tc.c, catalog.Product{ID: "1", Name: "T-shirt", Price: 100})
	m.AddToCart(tc.c, catalog.Product{ID: "2", Name: "Socks", Price: 50})
}

func (tc *testContext) givenForm(t *testing.T) {
	_, err := tc.sut.HandleChange(tc.c, "name", "A")
	require.NoError(t, err)
	_, err = tc.sut.HandleChange(tc.c, "email", "a@a.com")
	require.NoError(t, err)
	_, err = tc.sut.HandleChange(tc.c, "address", "Addr")
	require.NoError(t, err)
}

// expectMount captures the config passed to the widget.
func (tc *testContext) expectMount() *paymentapi.Config {
	captured := &paymentapi.Config{}
	tc.widget.EXPECT().Mount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(c context.Context, config paymentapi.Config) (paymentapi.Handle, error) {
			*captured = config
			return paymentapi.Handle{
				UID:          "handle_1",
				Method:       "mercadopago",
				PreferenceID: config.PreferenceID,
				Amount:       config.Amount,
				Currency:     config.Currency,
			}, nil
		})
	return captured
}

func (tc *testContext) givenMountedWidget(t *testing.T) *paymentapi.Config {
	tc.givenCart()
	tc.givenForm(t)
	_, err := tc.sut.SetMethod(tc.c, "mercadopago")
	require.NoError(t, err)

	tc.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(orders.Acknowledgement(`{}`), nil)
	tc.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).Return("pref_1", nil)
	tc.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)
	config := tc.expectMount()

	view, err := tc.sut.Submit(tc.c, "http://localhost:8080")
	require.NoError(t, err)
	require.Equal(t, ViewWidget, view.View)

	return config
}
