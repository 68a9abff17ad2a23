package checkout

import (
	"fmt"

	"github.com/MarcGrol/storefront/lib/myerrors"
)

const (
	fieldName    = "name"
	fieldEmail   = "email"
	fieldAddress = "address"

	fillInAllFieldsMessage = "Please fill in all fields"
)

type Form struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Address string `json:"address" form:"address"`
}

// FormState holds the contact details of the buyer and the message shown
// when they are incomplete.
type FormState struct {
	Form  Form   `json:"form"`
	Error string `json:"error,omitempty"`
}

func (f *FormState) HandleChange(field string, value string) error {
	switch field {
	case fieldName:
		f.Form.Name = value
	case fieldEmail:
		f.Form.Email = value
	case fieldAddress:
		f.Form.Address = value
	default:
		return myerrors.NewInvalidInputError(fmt.Errorf("unknown field %s", field))
	}
	return nil
}

// Validate reports whether all fields are filled in. Values are not trimmed.
func (f *FormState) Validate() bool {
	if f.Form.Name == "" || f.Form.Email == "" || f.Form.Address == "" {
		f.Error = fillInAllFieldsMessage
		return false
	}
	f.Error = ""
	return true
}
