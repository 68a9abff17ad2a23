package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormState(t *testing.T) {

	t.Run("Empty form is invalid", func(t *testing.T) {
		sut := FormState{}

		assert.False(t, sut.Validate())
		assert.Equal(t, "Please fill in all fields", sut.Error)
	})

	t.Run("Partially filled form is invalid", func(t *testing.T) {
		sut := FormState{Form: Form{Name: "A", Email: "a@a.com"}}

		assert.False(t, sut.Validate())
		assert.Equal(t, "Please fill in all fields", sut.Error)
	})

	t.Run("Complete form is valid and clears error", func(t *testing.T) {
		sut := FormState{Error: "Please fill in all fields"}

		assert.NoError(t, sut.HandleChange("name", "A"))
		assert.NoError(t, sut.HandleChange("email", "a@a.com"))
		assert.NoError(t, sut.HandleChange("address", "Addr"))

		assert.True(t, sut.Validate())
		assert.Empty(t, sut.Error)
		assert.Equal(t, Form{Name: "A", Email: "a@a.com", Address: "Addr"}, sut.Form)
	})

	t.Run("Whitespace counts as filled in", func(t *testing.T) {
		sut := FormState{Form: Form{Name: " ", Email: " ", Address: " "}}

		assert.True(t, sut.Validate())
	})

	t.Run("Change leaves other fields untouched", func(t *testing.T) {
		sut := FormState{Form: Form{Name: "A", Email: "a@a.com", Address: "Addr"}}

		assert.NoError(t, sut.HandleChange("email", "b@b.com"))

		assert.Equal(t, Form{Name: "A", Email: "b@b.com", Address: "Addr"}, sut.Form)
	})

	t.Run("Unknown field", func(t *testing.T) {
		sut := FormState{}

		assert.Error(t, sut.HandleChange("phone", "123"))
		assert.Equal(t, Form{}, sut.Form)
	})
}
