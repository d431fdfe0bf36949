package authn

import "errors"

var (
	// ErrShortSecret is returned when the sealing secret is too short to
	// derive a session key from.
	ErrShortSecret = errors.New("authn: secret must be at least 32 bytes")

	// ErrNoChallenge is returned when no live challenge exists for the
	// identity, either because none was issued or because it expired.
	ErrNoChallenge = errors.New("authn: no active challenge for identity")

	// ErrNonceMismatch is returned when the presented nonce does not match
	// the challenge on file.
	ErrNonceMismatch = errors.New("authn: nonce does not match challenge")

	// ErrInvalidSignature is returned when the signature does not verify
	// against the challenge message under the identity's key.
	ErrInvalidSignature = errors.New("authn: invalid signature")

	// ErrInvalidSessionToken is returned when a session token fails to
	// decode or decrypt.
	ErrInvalidSessionToken = errors.New("authn: invalid session token")

	// ErrSessionExpired is returned when a session token decrypts
	// correctly but its expiry has passed.
	ErrSessionExpired = errors.New("authn: session expired")
)
