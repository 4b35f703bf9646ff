package softkey

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

func passwordOf(pw string) PasswordProvider {
	return func() ([]byte, error) { return []byte(pw), nil }
}

func TestKeyFileRoundTrip(t *testing.T) {
	key, err := GenerateKey("ed25519")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.sigkit")

	t.Run("plain", func(t *testing.T) {
		if err := SaveKeyFile(path, key, nil); err != nil {
			t.Fatal(err)
		}
		got, err := LoadKeyFile(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.KeyID != key.KeyID || got.KeyVal != key.KeyVal {
			t.Errorf("round trip mismatch: %+v vs %+v", got, key)
		}
	})

	t.Run("encrypted", func(t *testing.T) {
		if err := SaveKeyFile(path, key, []byte("hunter2")); err != nil {
			t.Fatal(err)
		}
		got, err := LoadKeyFile(path, passwordOf("hunter2"))
		if err != nil {
			t.Fatal(err)
		}
		if got.KeyVal.Private != key.KeyVal.Private {
			t.Error("private material lost through encryption")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if err := SaveKeyFile(path, key, []byte("hunter2")); err != nil {
			t.Fatal(err)
		}
		_, err := LoadKeyFile(path, passwordOf("wrong"))
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("LoadKeyFile = %v, want ErrDecryptionFailed", err)
		}
	})

	t.Run("encrypted without provider", func(t *testing.T) {
		if err := SaveKeyFile(path, key, []byte("hunter2")); err != nil {
			t.Fatal(err)
		}
		_, err := LoadKeyFile(path, nil)
		if !errors.Is(err, ErrPasswordRequired) {
			t.Errorf("LoadKeyFile = %v, want ErrPasswordRequired", err)
		}
	})
}

func TestLoadKeyFileBareJSON(t *testing.T) {
	// 无魔数的文件按裸密钥记录解析，兼容手工导出
	key, err := GenerateKey("ed25519")
	if err != nil {
		t.Fatal(err)
	}
	record, err := key.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, record, 0600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKeyFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.KeyID != key.KeyID {
		t.Errorf("keyid %s, want %s", got.KeyID, key.KeyID)
	}
}

func TestSaveKeyFileRejectsPublicOnly(t *testing.T) {
	key, err := GenerateKey("ed25519")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.sigkit")
	if err := SaveKeyFile(path, key.Public(), nil); !errors.Is(err, keys.ErrNoPrivateKey) {
		t.Errorf("SaveKeyFile(public-only) = %v, want ErrNoPrivateKey", err)
	}
}

func TestSignerFactory(t *testing.T) {
	key, err := GenerateKey("ecdsa-sha2-nistp256")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.sigkit")
	if err := SaveKeyFile(path, key, nil); err != nil {
		t.Fatal(err)
	}

	factory := SignerFactory(nil)
	data := []byte("payload")

	for _, ref := range []string{"file:" + path, path} {
		s, err := factory(ref)
		if err != nil {
			t.Fatalf("factory(%q): %v", ref, err)
		}
		sig, err := s.Sign(context.Background(), data)
		if err != nil {
			t.Fatal(err)
		}

		v, err := NewVerifier(key.Public())
		if err != nil {
			t.Fatal(err)
		}
		ok, err := v.Verify(data, sig)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("signature from ref %q rejected", ref)
		}
	}
}
