package cart

import (
	"context"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/services/catalog"
)

// Manager owns the cart of a single session. Every mutation is written back
// to storage; storage failures are logged and never reach the caller.
type Manager struct {
	storage mystorage.Storage
	logger  mylog.Logger
	items   []LineItem
}

func NewManager(storage mystorage.Storage, logger mylog.Logger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger,
		items:   []LineItem{},
	}
}

// Load reads the persisted cart. A missing or unreadable cart leaves the cart
// empty and is not written back.
func (m *Manager) Load(c context.Context) {
	m.items = []LineItem{}

	items := []LineItem{}
	found, err := mystorage.GetJSON(c, m.storage, mystorage.KeyCart, &items)
	if err != nil {
		m.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error loading cart: %s", err)
		return
	}
	if !found {
		return
	}

	m.items = items
}

func (m *Manager) AddToCart(c context.Context, product catalog.Product) {
	idx := m.indexOf(product.ID)
	if idx >= 0 {
		m.items[idx].Quantity++
	} else {
		m.items = append(m.items, LineItem{
			Product:  product,
			Quantity: 1,
		})
	}

	m.persist(c)
}

func (m *Manager) RemoveFromCart(c context.Context, id string) {
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}

	m.items = append(m.items[:idx], m.items[idx+1:]...)

	m.persist(c)
}

func (m *Manager) DecreaseQuantity(c context.Context, id string) {
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}

	m.items[idx].Quantity--
	if m.items[idx].Quantity <= 0 {
		m.items = append(m.items[:idx], m.items[idx+1:]...)
	}

	m.persist(c)
}

func (m *Manager) ClearCart(c context.Context) {
	m.items = []LineItem{}

	m.persist(c)
}

func (m *Manager) Items() []LineItem {
	items := make([]LineItem, len(m.items))
	copy(items, m.items)
	return items
}

func (m *Manager) Total() int64 {
	var total int64
	for _, item := range m.items {
		total += item.Subtotal()
	}
	return total
}

func (m *Manager) IsEmpty() bool {
	return len(m.items) == 0
}

// Count returns the number of units in the cart.
func (m *Manager) Count() int {
	count := 0
	for _, item := range m.items {
		count += item.Quantity
	}
	return count
}

func (m *Manager) View() View {
	return View{
		Items: m.Items(),
		Total: m.Total(),
		Count: m.Count(),
		Empty: m.IsEmpty(),
	}
}

func (m *Manager) indexOf(id string) int {
	for idx, item := range m.items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

func (m *Manager) persist(c context.Context) {
	err := mystorage.SetJSON(c, m.storage, mystorage.KeyCart, m.items)
	if err != nil {
		m.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error storing cart: %s", err)
	}
}
