package signer

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignDeterministic(t *testing.T) {
	s := New("test-secret")

	sig1 := s.Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")
	sig2 := s.Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")

	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, SignatureLength)
}

func TestVerifyRoundTrip(t *testing.T) {
	s := New("test-secret")

	sig := s.Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")
	assert.True(t, s.Verify(ScopeVerify, sig, "ticket-1", "event-1", "1700000000000"))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := New("test-secret")
	sig := s.Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")

	// Flip one character of the signature.
	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	assert.False(t, s.Verify(ScopeVerify, string(flipped), "ticket-1", "event-1", "1700000000000"))

	// Any field change invalidates the signature.
	assert.False(t, s.Verify(ScopeVerify, sig, "ticket-2", "event-1", "1700000000000"))
	assert.False(t, s.Verify(ScopeVerify, sig, "ticket-1", "event-2", "1700000000000"))
	assert.False(t, s.Verify(ScopeVerify, sig, "ticket-1", "event-1", "1700000000001"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	sig := New("secret-a").Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")
	assert.False(t, New("secret-b").Verify(ScopeVerify, sig, "ticket-1", "event-1", "1700000000000"))
}

func TestScopeSeparation(t *testing.T) {
	s := New("test-secret")

	verifySig := s.Sign(ScopeVerify, "ticket-1", "event-1", "1700000000000")
	shareSig := s.Sign(ScopeShare, "ticket-1", "event-1", "1700000000000")

	assert.NotEqual(t, verifySig, shareSig)
	assert.False(t, s.Verify(ScopeShare, verifySig, "ticket-1", "event-1", "1700000000000"))
	assert.False(t, s.Verify(ScopeVerify, shareSig, "ticket-1", "event-1", "1700000000000"))
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	exactly := now.Add(-LinkMaxAge).UnixMilli()
	assert.False(t, Expired(exactly, now), "link exactly at the age ceiling is still accepted")

	justInside := now.Add(-LinkMaxAge).Add(time.Millisecond).UnixMilli()
	assert.False(t, Expired(justInside, now))

	justPast := now.Add(-LinkMaxAge).Add(-time.Millisecond).UnixMilli()
	assert.True(t, Expired(justPast, now))

	fresh := now.UnixMilli()
	assert.False(t, Expired(fresh, now))
}

func TestVerificationURL(t *testing.T) {
	s := New("test-secret")
	issuedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	url := s.VerificationURL("http://localhost:3000/", "ticket-1", "event-1", issuedAt)

	ts := issuedAt.UnixMilli()
	expectedSig := s.Sign(ScopeVerify, "ticket-1", "event-1", strconv.FormatInt(ts, 10))
	assert.Equal(t, fmt.Sprintf("http://localhost:3000/verify?t=ticket-1&s=%s&ts=%d", expectedSig, ts), url)
}

func TestParseLinkRoundTrip(t *testing.T) {
	s := New("test-secret")
	issuedAt := time.Now()

	url := s.VerificationURL("http://localhost:3000", "ticket-1", "event-1", issuedAt)
	params, err := ParseLink(url)
	require.NoError(t, err)

	assert.Equal(t, "ticket-1", params.TicketID)
	assert.Equal(t, issuedAt.UnixMilli(), params.Timestamp)
	assert.True(t, s.Verify(ScopeVerify, params.Signature,
		"ticket-1", "event-1", strconv.FormatInt(params.Timestamp, 10)))
}

func TestParseLinkMissingParams(t *testing.T) {
	cases := []string{
		"http://localhost:3000/verify",
		"http://localhost:3000/verify?t=ticket-1&s=abc",
		"http://localhost:3000/verify?t=ticket-1&ts=1700000000000",
		"http://localhost:3000/verify?s=abc&ts=1700000000000",
		"http://localhost:3000/verify?t=ticket-1&s=abc&ts=not-a-number",
	}
	for _, payload := range cases {
		_, err := ParseLink(payload)
		assert.Error(t, err, payload)
	}
}
