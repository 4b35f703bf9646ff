package sigkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sigkit/pkg/lib/signer"
	"github.com/dep2p/go-sigkit/pkg/lib/softkey"
)

func TestEndToEnd(t *testing.T) {
	key, err := GenerateKey("ed25519")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.sigkit")
	require.NoError(t, softkey.SaveKeyFile(path, key, nil))

	data := []byte("release metadata v1.0")

	sig, err := Sign(context.Background(), "file:"+path, data)
	require.NoError(t, err)
	assert.Equal(t, key.KeyID, sig.KeyID)

	// 验签方只需要公钥记录
	ok, err := Verify(key.Public(), data, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(key.Public(), []byte("tampered"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignBareRef(t *testing.T) {
	key, err := GenerateKey("ecdsa-sha2-nistp256")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.sigkit")
	require.NoError(t, softkey.SaveKeyFile(path, key, nil))

	data := []byte("payload")
	sig, err := Sign(context.Background(), path, data)
	require.NoError(t, err)

	ok, err := Verify(key.Public(), data, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignUnknownScheme(t *testing.T) {
	_, err := Sign(context.Background(), "vault:secret/key", []byte("x"))
	require.ErrorIs(t, err, signer.ErrUnsupportedScheme)
}

func TestDefaultRegistryCoversBuiltinSchemes(t *testing.T) {
	r := DefaultRegistry()
	assert.Same(t, r, DefaultRegistry(), "registry must be a singleton")

	for _, scheme := range []string{
		"rsassa-pss-sha256",
		"rsassa-pss-sha384",
		"rsassa-pss-sha512",
		"rsa-pkcs1v15-sha256",
		"ecdsa-sha2-nistp256",
		"ecdsa-sha2-nistp384",
		"ecdsa-secp256k1-sha256",
		"ed25519",
	} {
		if testing.Short() && scheme[:3] == "rsa" {
			continue
		}
		key, err := GenerateKey(scheme)
		require.NoError(t, err, scheme)
		_, err = r.GetVerifier(key.Public())
		require.NoError(t, err, scheme)
	}
}
