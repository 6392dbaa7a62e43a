package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/briefpay/types"
)

func TestInitializeRequiresKey(t *testing.T) {
	adapter := NewLocalAdapter(nil)

	handle, err := adapter.Initialize("  ")
	assert.Nil(t, handle)
	assert.Equal(t, types.KindConfiguration, types.KindOf(err))

	handle, err = adapter.Initialize("pk_test_123")
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", handle.PublicKey)
	assert.NotEmpty(t, handle.ID)
}

func TestSessionsAreNeverReused(t *testing.T) {
	adapter := NewLocalAdapter(nil)
	handle, err := adapter.Initialize("pk_test_123")
	require.NoError(t, err)

	first, err := adapter.CreateSession(handle, "secret_1", DefaultAppearance())
	require.NoError(t, err)
	second, err := adapter.CreateSession(handle, "secret_2", DefaultAppearance())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, adapter.Sessions(), 2)
	assert.Equal(t, handle.ID, second.HandleID)
}

func TestCreateSessionPreconditions(t *testing.T) {
	adapter := NewLocalAdapter(nil)
	_, err := adapter.CreateSession(nil, "secret", DefaultAppearance())
	assert.ErrorIs(t, err, ErrNoHandle)

	handle, _ := adapter.Initialize("pk_test_123")
	_, err = adapter.CreateSession(handle, "", DefaultAppearance())
	assert.ErrorIs(t, err, ErrNoClientSecret)
}

func TestConfirmRequiresMount(t *testing.T) {
	adapter := NewLocalAdapter(nil)
	handle, _ := adapter.Initialize("pk_test_123")
	session, err := adapter.CreateSession(handle, "secret", DefaultAppearance())
	require.NoError(t, err)

	_, err = adapter.ConfirmPayment(context.Background(), session, "https://example.com/payment-success?brief_id=1")
	assert.ErrorIs(t, err, ErrNotMounted)

	require.NoError(t, adapter.MountWidget(session, "#payment-element"))
	container, ok := adapter.Mounted(session.ID)
	require.True(t, ok)
	assert.Equal(t, "#payment-element", container)

	res, err := adapter.ConfirmPayment(context.Background(), session, "https://example.com/payment-success?brief_id=1")
	require.NoError(t, err)
	assert.True(t, res.Redirected)
	assert.Equal(t, "https://example.com/payment-success?brief_id=1", res.RedirectURL)
}

func TestDeclineOnConfirm(t *testing.T) {
	adapter := NewLocalAdapter(DeclineOnConfirm(ErrorKindCard, "Your card was declined."))
	handle, _ := adapter.Initialize("pk_test_123")
	session, _ := adapter.CreateSession(handle, "secret", DefaultAppearance())
	require.NoError(t, adapter.MountWidget(session, "#payment-element"))

	res, err := adapter.ConfirmPayment(context.Background(), session, "https://example.com")
	require.NoError(t, err)
	assert.False(t, res.Redirected)
	require.NotNil(t, res.Error)
	assert.True(t, res.Error.UserCorrectable())
	assert.Equal(t, "Your card was declined.", res.Error.Message)
}

func TestUserCorrectable(t *testing.T) {
	assert.True(t, (&ErrorInfo{Kind: ErrorKindValidation}).UserCorrectable())
	assert.False(t, (&ErrorInfo{Kind: ErrorKindAPI}).UserCorrectable())
	var nilInfo *ErrorInfo
	assert.False(t, nilInfo.UserCorrectable())
}
