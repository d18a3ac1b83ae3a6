package student

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	email, err := NewEmail("  Maria.Silva@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, Email("maria.silva@example.com"), email)

	for _, raw := range []string{"", "no-at-sign", "a@", "@b", "a b@c.com"} {
		_, err := NewEmail(raw)
		assert.Error(t, err, "email %q should be rejected", raw)
	}
}

func TestNewPhone(t *testing.T) {
	phone, err := NewPhone("(11) 98765-4321")
	require.NoError(t, err)
	assert.Equal(t, Phone("11987654321"), phone)

	// Phone is optional.
	phone, err = NewPhone("")
	require.NoError(t, err)
	assert.Empty(t, phone)

	_, err = NewPhone("123")
	assert.Error(t, err)
}

func TestNewCPF(t *testing.T) {
	// 529.982.247-25 is a well-known valid test CPF.
	cpf, err := NewCPF("529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, CPF("52998224725"), cpf)

	// CPF is optional.
	cpf, err = NewCPF("")
	require.NoError(t, err)
	assert.Empty(t, cpf)

	_, err = NewCPF("529.982.247-26") // wrong check digit
	assert.Error(t, err)

	_, err = NewCPF("111.111.111-11") // repeated digits
	assert.Error(t, err)

	_, err = NewCPF("12345")
	assert.Error(t, err)
}

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(NewStudentParams{
		ID:    uuid.NewString(),
		Name:  "  Maria Silva  ",
		Email: "Maria@Example.com",
		Notes: " transferred from campus B ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Silva", s.Name)
	assert.Equal(t, Email("maria@example.com"), s.Email)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "transferred from campus B", s.Notes)
	assert.True(t, s.Status.CanEnroll())
}

func TestNewStudent_Validation(t *testing.T) {
	_, err := NewStudent(NewStudentParams{ID: "nope", Name: "A", Email: "a@b.com"})
	assert.Error(t, err)

	_, err = NewStudent(NewStudentParams{ID: uuid.NewString(), Name: "  ", Email: "a@b.com"})
	assert.Error(t, err)

	_, err = NewStudent(NewStudentParams{ID: uuid.NewString(), Name: "A", Email: "bad"})
	assert.Error(t, err)
}

func TestStudentLifecycle(t *testing.T) {
	s, err := NewStudent(NewStudentParams{
		ID:    uuid.NewString(),
		Name:  "Joao",
		Email: "joao@example.com",
	})
	require.NoError(t, err)

	s.Deactivate()
	assert.Equal(t, StatusInactive, s.Status)
	assert.False(t, s.Status.CanEnroll())

	s.MarkGraduated()
	assert.Equal(t, StatusGraduated, s.Status)
}
