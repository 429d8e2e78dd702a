package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdentifier(t *testing.T) {
	valid := []string{"doctors", "_tmp", "Appointments2", "a"}
	for _, name := range valid {
		assert.NoError(t, ValidIdentifier(name), name)
	}

	invalid := []string{"", "1doctors", "doctors;drop", `"doctors"`, "public.doctors", "name with space"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidIdentifier(name), ErrInvalidIdentifier, name)
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	st := Unavailable(cause)

	sess, err := st.Session(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, st.Close())
}
