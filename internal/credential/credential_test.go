package credential

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/remlogon/internal/fields"
	"github.com/hnrobert/remlogon/internal/logon"
)

type captureValidator struct {
	username string
	password string
	calls    int
	result   logon.Result
}

func (v *captureValidator) Attempt(_ context.Context, username, password string) logon.Result {
	v.calls++
	v.username = username
	v.password = password
	return v.result
}

type fakeEvents struct {
	values map[int]string
}

func (e *fakeEvents) SetFieldValue(index int, value string) error {
	if e.values == nil {
		e.values = map[int]string{}
	}
	e.values[index] = value
	return nil
}

func TestGetFieldStaticValues(t *testing.T) {
	c := New(&captureValidator{})

	label, err := c.GetField(fields.IndexLabel)
	require.NoError(t, err)
	assert.NotEmpty(t, label)

	submit, err := c.GetField(fields.IndexSubmit)
	require.NoError(t, err)
	assert.NotEmpty(t, submit)

	_, err = c.GetField(fields.IndexImage)
	assert.ErrorIs(t, err, ErrNotApplicable)

	_, err = c.GetField(9)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c := New(&captureValidator{})
	require.NoError(t, c.SetField(fields.IndexUsername, "alice"))
	require.NoError(t, c.SetField(fields.IndexPassword, "Secret1"))

	u, err := c.GetField(fields.IndexUsername)
	require.NoError(t, err)
	assert.Equal(t, "alice", u)
	p, err := c.GetField(fields.IndexPassword)
	require.NoError(t, err)
	assert.Equal(t, "Secret1", p)
}

func TestSetFieldRejectsNonInputs(t *testing.T) {
	c := New(&captureValidator{})
	for _, i := range []int{fields.IndexImage, fields.IndexLabel, fields.IndexSubmit} {
		assert.ErrorIs(t, c.SetField(i, "x"), ErrInvalidField, "index %d", i)
	}
	assert.ErrorIs(t, c.SetField(17, "x"), ErrOutOfRange)
}

func TestSetFieldTooLongKeepsPriorValue(t *testing.T) {
	c := New(&captureValidator{})
	require.NoError(t, c.SetField(fields.IndexPassword, "keepme"))

	err := c.SetField(fields.IndexPassword, strings.Repeat("x", 257))
	require.ErrorIs(t, err, ErrValueTooLong)

	got, err := c.GetField(fields.IndexPassword)
	require.NoError(t, err)
	assert.Equal(t, "keepme", got)
}

func TestUsernameBoundAllowsDomainPrefix(t *testing.T) {
	c := New(&captureValidator{})
	long := "DOMAIN0123456789\\" + strings.Repeat("u", 255)
	require.LessOrEqual(t, len(long), 256+16)
	assert.NoError(t, c.SetField(fields.IndexUsername, long))

	err := c.SetField(fields.IndexUsername, strings.Repeat("u", 273))
	assert.ErrorIs(t, err, ErrValueTooLong)
}

func TestClear(t *testing.T) {
	c := New(&captureValidator{})
	require.NoError(t, c.SetField(fields.IndexUsername, "alice"))
	require.NoError(t, c.SetField(fields.IndexPassword, "pw"))

	c.Clear()
	u, _ := c.GetField(fields.IndexUsername)
	p, _ := c.GetField(fields.IndexPassword)
	assert.Empty(t, u)
	assert.Empty(t, p)

	c.Clear() // idempotent
}

func TestDeselectedKeepsUsernameDropsPassword(t *testing.T) {
	c := New(&captureValidator{})
	ev := &fakeEvents{}
	c.Advise(ev)
	require.NoError(t, c.SetField(fields.IndexUsername, "alice"))
	require.NoError(t, c.SetField(fields.IndexPassword, "Secret1"))

	require.NoError(t, c.Deselected())

	// Host display got the username back and an empty password.
	assert.Equal(t, "alice", ev.values[fields.IndexUsername])
	assert.Equal(t, "", ev.values[fields.IndexPassword])

	// Internally the password is gone, the username is usable again.
	u, _ := c.GetField(fields.IndexUsername)
	p, _ := c.GetField(fields.IndexPassword)
	assert.Equal(t, "alice", u)
	assert.Empty(t, p)
}

func TestDeselectedWithoutEvents(t *testing.T) {
	c := New(&captureValidator{})
	require.NoError(t, c.SetField(fields.IndexPassword, "pw"))
	require.NoError(t, c.Deselected())
	p, _ := c.GetField(fields.IndexPassword)
	assert.Empty(t, p)
}

func TestUnadviseStopsPushes(t *testing.T) {
	c := New(&captureValidator{})
	ev := &fakeEvents{}
	c.Advise(ev)
	c.Unadvise()
	require.NoError(t, c.SetField(fields.IndexUsername, "alice"))
	require.NoError(t, c.Deselected())
	assert.Empty(t, ev.values)
}

func TestSelectedNeverAutoLogon(t *testing.T) {
	c := New(&captureValidator{})
	assert.False(t, c.Selected())
}

func TestSubmitPassesCurrentValues(t *testing.T) {
	v := &captureValidator{result: logon.Result{Outcome: logon.Accepted}}
	c := New(v)
	require.NoError(t, c.SetField(fields.IndexUsername, "alice"))
	require.NoError(t, c.SetField(fields.IndexPassword, "Secret1"))

	res := c.Submit(context.Background())
	assert.Equal(t, logon.Accepted, res.Outcome)
	assert.Equal(t, 1, v.calls)
	assert.Equal(t, "alice", v.username)
	assert.Equal(t, "Secret1", v.password)
}

func TestProviderContract(t *testing.T) {
	p := NewProvider(&captureValidator{})
	assert.Equal(t, 5, p.FieldCount())

	d, err := p.FieldAt(fields.IndexSubmit)
	require.NoError(t, err)
	assert.Equal(t, fields.KindSubmitButton, d.Kind)
	_, err = p.FieldAt(5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	count, def, auto := p.Credentials()
	assert.Equal(t, 1, count)
	assert.Equal(t, NoDefault, def)
	assert.False(t, auto)

	c1, err := p.CredentialAt(0)
	require.NoError(t, err)
	c2, err := p.CredentialAt(0)
	require.NoError(t, err)
	assert.Same(t, c1, c2, "one credential instance, handed out repeatedly")

	_, err = p.CredentialAt(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
