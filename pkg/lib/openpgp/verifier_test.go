package openpgp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

func TestKeyFromBundleRoundTrip(t *testing.T) {
	id := newEd25519Identity(t, time.Now().Add(-time.Hour))

	key := KeyFromBundle(id.bundle)
	assert.Equal(t, id.bundle.Primary.Key.Fingerprint, key.KeyID)
	assert.Equal(t, keys.KeyTypeOther, key.KeyType)
	assert.Equal(t, "pgp+eddsa", key.Scheme)
	require.NoError(t, key.Validate())

	bundle, err := BundleFromKey(key)
	require.NoError(t, err)
	assert.Equal(t, id.bundle.Primary.Key.Fingerprint, bundle.Primary.Key.Fingerprint)
}

func TestBundleFromKeyRejects(t *testing.T) {
	id := newEd25519Identity(t, time.Now().Add(-time.Hour))
	key := KeyFromBundle(id.bundle)

	t.Run("foreign scheme", func(t *testing.T) {
		bad := *key
		bad.Scheme = "ed25519"
		_, err := BundleFromKey(&bad)
		require.Error(t, err)
	})

	t.Run("fingerprint mismatch", func(t *testing.T) {
		bad := *key
		bad.KeyID = "0000000000000000000000000000000000000000"
		_, err := BundleFromKey(&bad)
		require.ErrorIs(t, err, keys.ErrKeyIDMismatch)
	})
}

func TestVerifierDispatch(t *testing.T) {
	id := newEd25519Identity(t, time.Now().Add(-time.Hour))
	key := KeyFromBundle(id.bundle)

	content := []byte("generic dispatch payload")

	// Signature.Sig 为完整的二进制签名包
	sigPacket := id.signPacketBytes(t, content)
	sig := &keys.Signature{KeyID: key.KeyID, Sig: sigPacket}

	v, err := VerifierFactory(key)
	require.NoError(t, err)

	ok, err := v.Verify(content, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("tampered content", func(t *testing.T) {
		ok, err := v.Verify([]byte("other content"), sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("foreign keyid", func(t *testing.T) {
		bad := &keys.Signature{KeyID: "1111111111111111111111111111111111111111", Sig: sigPacket}
		ok, err := v.Verify(content, bad)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil signature", func(t *testing.T) {
		_, err := v.Verify(content, nil)
		require.Error(t, err)
	})

	t.Run("garbage packet", func(t *testing.T) {
		bad := &keys.Signature{KeyID: key.KeyID, Sig: []byte{0x00, 0x01}}
		_, err := v.Verify(content, bad)
		var ferr *PacketFormatError
		require.ErrorAs(t, err, &ferr)
	})
}
