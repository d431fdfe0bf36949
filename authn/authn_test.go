package authn

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roguzh/solana-share-storage/pubkey"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New(bytes.Repeat([]byte{0x5A}, 32), 0, 0)
	require.NoError(t, err)
	return a
}

func newIdentity(t *testing.T) (pubkey.PubKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id, err := pubkey.FromBytes(pub)
	require.NoError(t, err)
	return id, priv
}

// --- Construction ---

func TestNew_ShortSecret(t *testing.T) {
	_, err := New([]byte("too short"), 0, 0)
	assert.ErrorIs(t, err, ErrShortSecret)
}

// --- Challenge ---

func TestChallenge_MessageFormat(t *testing.T) {
	a := newTestAuthenticator(t)
	id, _ := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	assert.Len(t, ch.Nonce, 64, "hex of 32 random bytes")
	assert.True(t, strings.HasPrefix(ch.Message, messagePrefix))
	assert.Contains(t, ch.Message, "Nonce: "+ch.Nonce)
	assert.Contains(t, ch.Message, "Timestamp: ")
}

func TestChallenge_ReplacesPending(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	first, err := a.Challenge(id)
	require.NoError(t, err)
	second, err := a.Challenge(id)
	require.NoError(t, err)
	require.NotEqual(t, first.Nonce, second.Nonce)

	// Signing the superseded challenge no longer works.
	sig := ed25519.Sign(priv, []byte(first.Message))
	_, err = a.Verify(id, first.Nonce, sig)
	assert.ErrorIs(t, err, ErrNonceMismatch)

	sig = ed25519.Sign(priv, []byte(second.Message))
	_, err = a.Verify(id, second.Nonce, sig)
	assert.NoError(t, err)
}

// --- Verify ---

func TestVerify(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, []byte(ch.Message))
	token, err := a.Verify(id, ch.Nonce, sig)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := a.OpenSession(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerify_NoChallenge(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	sig := ed25519.Sign(priv, []byte("anything"))
	_, err := a.Verify(id, "deadbeef", sig)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerify_WrongKey(t *testing.T) {
	a := newTestAuthenticator(t)
	id, _ := newIdentity(t)
	_, otherPriv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	sig := ed25519.Sign(otherPriv, []byte(ch.Message))
	_, err = a.Verify(id, ch.Nonce, sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_TamperedMessage(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	// Signature over anything but the exact issued bytes fails.
	sig := ed25519.Sign(priv, []byte(ch.Message+" "))
	_, err = a.Verify(id, ch.Nonce, sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_SingleUse(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, []byte(ch.Message))
	_, err = a.Verify(id, ch.Nonce, sig)
	require.NoError(t, err)

	_, err = a.Verify(id, ch.Nonce, sig)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerify_ChallengeExpires(t *testing.T) {
	a, err := New(bytes.Repeat([]byte{0x5A}, 32), 10*time.Millisecond, 0)
	require.NoError(t, err)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	sig := ed25519.Sign(priv, []byte(ch.Message))
	_, err = a.Verify(id, ch.Nonce, sig)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

// --- Sessions ---

func TestOpenSession_Garbage(t *testing.T) {
	a := newTestAuthenticator(t)

	for _, token := range []string{
		"",
		"not!base58",
		base58.Encode([]byte("short")),
		base58.Encode(bytes.Repeat([]byte{0x01}, 80)),
	} {
		_, err := a.OpenSession(token)
		assert.ErrorIs(t, err, ErrInvalidSessionToken, "token %q", token)
	}
}

func TestOpenSession_WrongSecret(t *testing.T) {
	a := newTestAuthenticator(t)
	other, err := New(bytes.Repeat([]byte{0xA5}, 32), 0, 0)
	require.NoError(t, err)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, []byte(ch.Message))
	token, err := a.Verify(id, ch.Nonce, sig)
	require.NoError(t, err)

	_, err = other.OpenSession(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestOpenSession_Expired(t *testing.T) {
	a := newTestAuthenticator(t)
	id, priv := newIdentity(t)

	ch, err := a.Challenge(id)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, []byte(ch.Message))
	token, err := a.Verify(id, ch.Nonce, sig)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(DefaultSessionTTL + time.Hour) }
	_, err = a.OpenSession(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}
