package kms

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
	"github.com/dep2p/go-sigkit/pkg/lib/softkey"
)

// fakeClient 用进程内 Ed25519 私钥模拟云 KMS
type fakeClient struct {
	resource string
	priv     ed25519.PrivateKey
	key      *keys.Key
	signErr  error

	gotPayload []byte
}

func newFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := keys.New(keys.KeyTypeEd25519, "ed25519", keys.KeyVal{
		Public: hex.EncodeToString(pub),
	})
	require.NoError(t, err)
	return &fakeClient{
		resource: "projects/p/cryptoKeys/k/versions/1",
		priv:     priv,
		key:      key,
	}
}

func (f *fakeClient) Sign(_ context.Context, resource string, payload []byte) ([]byte, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	if resource != f.resource {
		return nil, errors.New("NOT_FOUND: key version")
	}
	f.gotPayload = payload
	return ed25519.Sign(f.priv, payload), nil
}

func (f *fakeClient) PublicKey(_ context.Context, resource string) (*keys.Key, error) {
	if resource != f.resource {
		return nil, errors.New("NOT_FOUND: key version")
	}
	return f.key, nil
}

func TestKMSSignEd25519(t *testing.T) {
	client := newFakeClient(t)
	s, err := SignerFromResource(context.Background(), client, client.resource)
	require.NoError(t, err)

	data := []byte("release metadata")
	sig, err := s.Sign(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, client.key.KeyID, sig.KeyID)

	// ed25519 不预哈希，服务端收到原始数据
	assert.Equal(t, data, client.gotPayload)

	v, err := softkey.NewVerifier(client.key.Public())
	require.NoError(t, err)
	ok, err := v.Verify(data, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKMSPrehash(t *testing.T) {
	client := newFakeClient(t)
	client.key.Scheme = "ecdsa-sha2-nistp256"
	s, err := NewSigner(client, client.resource, client.key)
	require.NoError(t, err)

	data := []byte("payload")
	_, err = s.Sign(context.Background(), data)
	require.NoError(t, err)

	digest := sha256.Sum256(data)
	assert.Equal(t, digest[:], client.gotPayload, "non-ed25519 schemes send the digest")
}

func TestKMSBackendErrorPassthrough(t *testing.T) {
	client := newFakeClient(t)
	s, err := SignerFromResource(context.Background(), client, client.resource)
	require.NoError(t, err)

	kmsErr := errors.New("UNAVAILABLE: deadline exceeded")
	client.signErr = kmsErr

	_, err = s.Sign(context.Background(), []byte("x"))
	var berr *signer.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "kms", berr.Backend)
	assert.ErrorIs(t, err, kmsErr)
}

func TestKMSUnknownResource(t *testing.T) {
	client := newFakeClient(t)
	_, err := SignerFromResource(context.Background(), client, "projects/p/cryptoKeys/other/versions/1")
	var berr *signer.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "kms", berr.Backend)
}

func TestKMSUnsupportedScheme(t *testing.T) {
	client := newFakeClient(t)
	client.key.Scheme = "sphincs-shake-128s"
	_, err := NewSigner(client, client.resource, client.key)
	require.ErrorIs(t, err, signer.ErrUnsupportedAlgorithm)
}

func TestKMSSignerFactory(t *testing.T) {
	client := newFakeClient(t)
	factory := SignerFactory(client)

	t.Run("valid ref", func(t *testing.T) {
		s, err := factory("kms:" + client.resource)
		require.NoError(t, err)
		sig, err := s.Sign(context.Background(), []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, client.key.KeyID, sig.KeyID)
	})

	t.Run("empty resource", func(t *testing.T) {
		_, err := factory("kms:")
		require.ErrorIs(t, err, signer.ErrUnsupportedScheme)
	})
}
