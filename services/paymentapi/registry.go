package paymentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MarcGrol/storefront/lib/myerrors"
)

type mounted struct {
	handle Handle
	config Config
}

// Registry keeps the mounted widgets until their payment is settled or the
// widget is closed.
type Registry struct {
	mutex   sync.Mutex
	widgets map[string]mounted
}

func NewRegistry() *Registry {
	return &Registry{
		widgets: map[string]mounted{},
	}
}

func (r *Registry) Add(handle Handle, config Config) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.widgets[handle.UID] = mounted{
		handle: handle,
		config: config,
	}
}

func (r *Registry) Get(uid string) (Handle, Config, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, found := r.widgets[uid]
	return m.handle, m.config, found
}

// FindBySession returns the uid of the mounted widget of method that owns
// the provider session.
func (r *Registry) FindBySession(method string, sessionID string) (string, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if sessionID == "" {
		return "", false
	}
	for uid, m := range r.widgets {
		if m.handle.Method == method && m.handle.SessionID == sessionID {
			return uid, true
		}
	}
	return "", false
}

func (r *Registry) Remove(uid string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.widgets, uid)
}

// Settle reports the outcome of a payment to the checkout that mounted the
// widget. Success and cancel end the widget; an error leaves it mounted so
// the buyer can try again.
func (r *Registry) Settle(c context.Context, uid string, status Status, result json.RawMessage) error {
	r.mutex.Lock()
	m, found := r.widgets[uid]
	if found && (status == StatusSuccess || status.isCancel()) {
		delete(r.widgets, uid)
	}
	r.mutex.Unlock()

	if !found {
		return myerrors.NewNotFoundError(fmt.Errorf("payment widget %s not found", uid))
	}

	switch {
	case status == StatusSuccess:
		if m.config.OnSuccess != nil {
			m.config.OnSuccess(c, result)
		}
	case status.isCancel():
		if m.config.OnCancel != nil {
			m.config.OnCancel(c)
		}
	default:
		if m.config.OnError != nil {
			m.config.OnError(c, fmt.Errorf("payment %s ended with status %s", uid, status))
		}
	}

	return nil
}

// Fail reports a failed payment attempt. The widget stays mounted.
func (r *Registry) Fail(c context.Context, uid string, err error) error {
	_, config, found := r.Get(uid)
	if !found {
		return myerrors.NewNotFoundError(fmt.Errorf("payment widget %s not found", uid))
	}

	if config.OnError != nil {
		config.OnError(c, err)
	}

	return nil
}
