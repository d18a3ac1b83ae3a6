package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func TestReadLine(t *testing.T) {
	p, _ := newTestPrompter("  Ana Souza  \n")

	value, err := p.ReadLine("Name")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", value)

	_, err = p.ReadLine("Name")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequired_RepromptsOnEmpty(t *testing.T) {
	p, out := newTestPrompter("\n\nGo Fundamentals\n")

	value, err := p.ReadRequired("Title")
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", value)
	assert.Contains(t, out.String(), "Value is required.")
}

func TestReadInt(t *testing.T) {
	p, out := newTestPrompter("\nabc\n40\n")

	value, err := p.ReadInt("Duration", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, value, "empty input takes the default")

	value, err = p.ReadInt("Duration", 30)
	require.NoError(t, err)
	assert.Equal(t, 40, value, "invalid input re-prompts")
	assert.Contains(t, out.String(), "Enter a whole number.")
}

func TestReadMoney(t *testing.T) {
	p, _ := newTestPrompter("150.50\n\n-5\n99.999\n")

	cents, err := p.ReadMoney("Fee")
	require.NoError(t, err)
	assert.Equal(t, int64(15050), cents)

	cents, err = p.ReadMoney("Fee")
	require.NoError(t, err)
	assert.Zero(t, cents, "empty input means free")

	// Negative is rejected, then the rounded value is accepted.
	cents, err = p.ReadMoney("Fee")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), cents)
}

func TestReadBool(t *testing.T) {
	p, _ := newTestPrompter("maybe\nYES\nn\n")

	ok, err := p.ReadBool("Confirm")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.ReadBool("Confirm")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadDate(t *testing.T) {
	p, _ := newTestPrompter("2026-03-09\n31/12/2026\n2026-12-31\n")

	d, err := p.ReadDate("Class date")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, 9, d.Day())

	d, err = p.ReadDate("Class date")
	require.NoError(t, err)
	assert.Equal(t, 31, d.Day(), "invalid format re-prompts")
}

func TestReadOptionalDate(t *testing.T) {
	p, _ := newTestPrompter("\n1990-05-20\n")

	d, err := p.ReadOptionalDate("Birth date")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = p.ReadOptionalDate("Birth date")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1990, d.Year())
}

func TestChoose(t *testing.T) {
	p, out := newTestPrompter("\nACTIVE\nbogus\npending\n")

	value, err := p.Choose("Status", "all", "active", "pending")
	require.NoError(t, err)
	assert.Equal(t, "all", value, "empty input takes the first option")

	value, err = p.Choose("Status", "all", "active", "pending")
	require.NoError(t, err)
	assert.Equal(t, "active", value, "matching is case-insensitive")

	value, err = p.Choose("Status", "all", "active", "pending")
	require.NoError(t, err)
	assert.Equal(t, "pending", value)
	assert.Contains(t, out.String(), "Choose one of:")
}
