// Package authn implements challenge-response wallet authentication.
//
// A client asks for a challenge for its public key, signs the challenge
// message with the matching ed25519 private key, and exchanges the
// signature for an encrypted session token. The token is self-contained:
// verifying it needs only the sealing secret, no server-side session
// store.
package authn

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/mr-tron/base58"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/roguzh/solana-share-storage/pubkey"
)

const (
	// DefaultChallengeTTL is how long an issued challenge stays valid.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultSessionTTL is the lifetime of an issued session token.
	DefaultSessionTTL = 24 * time.Hour

	nonceLen = 32

	// sealed payload: identity (32) + expiry unix seconds (8)
	payloadLen = 40
)

// messagePrefix is the human-readable header of every challenge message.
// Wallets display it before signing.
const messagePrefix = "Sign this message to authenticate with Enhanced Royalties."

// sealInfo namespaces the HKDF derivation of the sealing key.
var sealInfo = []byte("share-storage session token v1")

// Challenge is a pending authentication challenge.
type Challenge struct {
	Nonce    string // hex
	Message  string // exact bytes the client must sign
	IssuedAt time.Time
}

// Authenticator issues challenges and exchanges signed challenges for
// session tokens. Safe for concurrent use.
type Authenticator struct {
	aead       cipher.AEAD
	challenges *cache.Cache
	sessionTTL time.Duration

	now func() time.Time
}

// New builds an Authenticator sealing tokens under a key derived from
// secret. The secret must be at least 32 bytes of entropy.
func New(secret []byte, challengeTTL, sessionTTL time.Duration) (*Authenticator, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	if challengeTTL <= 0 {
		challengeTTL = DefaultChallengeTTL
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, sealInfo), key); err != nil {
		return nil, fmt.Errorf("authn: deriving sealing key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("authn: %w", err)
	}

	return &Authenticator{
		aead:       aead,
		challenges: cache.New(challengeTTL, 2*challengeTTL),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}, nil
}

// Challenge issues a fresh challenge for identity, replacing any
// earlier one still pending. The challenge expires after the
// configured TTL.
func (a *Authenticator) Challenge(identity pubkey.PubKey) (*Challenge, error) {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("authn: generating nonce: %w", err)
	}

	ch := &Challenge{
		Nonce:    hex.EncodeToString(nonce),
		IssuedAt: a.now(),
	}
	ch.Message = fmt.Sprintf("%s\n\nNonce: %s\nTimestamp: %d",
		messagePrefix, ch.Nonce, ch.IssuedAt.UnixMilli())

	a.challenges.Set(identity.String(), ch, cache.DefaultExpiration)
	return ch, nil
}

// Verify checks signature over the pending challenge message for
// identity and, on success, consumes the challenge and returns a
// session token. The signature must be an ed25519 signature over the
// exact message bytes returned by Challenge.
func (a *Authenticator) Verify(identity pubkey.PubKey, nonce string, signature []byte) (string, error) {
	key := identity.String()
	v, ok := a.challenges.Get(key)
	if !ok {
		return "", ErrNoChallenge
	}
	ch := v.(*Challenge)

	if nonce != ch.Nonce {
		return "", ErrNonceMismatch
	}
	if !ed25519.Verify(ed25519.PublicKey(identity.Bytes()), []byte(ch.Message), signature) {
		return "", ErrInvalidSignature
	}

	// Single use: a verified challenge can never be replayed.
	a.challenges.Delete(key)

	return a.seal(identity, a.now().Add(a.sessionTTL))
}

// OpenSession validates a session token and returns the identity it was
// issued to.
func (a *Authenticator) OpenSession(token string) (pubkey.PubKey, error) {
	raw, err := base58.Decode(token)
	if err != nil {
		return pubkey.Zero, fmt.Errorf("%w: %s", ErrInvalidSessionToken, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return pubkey.Zero, fmt.Errorf("%w: truncated", ErrInvalidSessionToken)
	}

	payload, err := a.aead.Open(nil, raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return pubkey.Zero, fmt.Errorf("%w: %s", ErrInvalidSessionToken, err)
	}
	if len(payload) != payloadLen {
		return pubkey.Zero, fmt.Errorf("%w: bad payload length", ErrInvalidSessionToken)
	}

	identity, err := pubkey.FromBytes(payload[:32])
	if err != nil {
		return pubkey.Zero, fmt.Errorf("%w: %s", ErrInvalidSessionToken, err)
	}
	expiry := int64(binary.BigEndian.Uint64(payload[32:]))
	if a.now().Unix() >= expiry {
		return pubkey.Zero, ErrSessionExpired
	}
	return identity, nil
}

func (a *Authenticator) seal(identity pubkey.PubKey, expiry time.Time) (string, error) {
	payload := make([]byte, payloadLen)
	copy(payload, identity.Bytes())
	binary.BigEndian.PutUint64(payload[32:], uint64(expiry.Unix()))

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("authn: generating token nonce: %w", err)
	}
	sealed := a.aead.Seal(nonce, nonce, payload, nil)
	return base58.Encode(sealed), nil
}
