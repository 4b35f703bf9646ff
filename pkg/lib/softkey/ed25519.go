package softkey

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

// ed25519Algorithm Ed25519 实现
//
// 密钥材料为十六进制编码：公钥 32 字节，私钥为 32 字节种子。
type ed25519Algorithm struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newEd25519Algorithm(key *keys.Key, needPrivate bool) (*ed25519Algorithm, error) {
	pub, err := hex.DecodeString(key.KeyVal.Public)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex: %v", keys.ErrInvalidKey, err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d byte ed25519 public key, got %d",
			keys.ErrInvalidKey, ed25519.PublicKeySize, len(pub))
	}

	alg := &ed25519Algorithm{pub: pub}

	if needPrivate {
		seed, err := hex.DecodeString(key.KeyVal.Private)
		if err != nil {
			return nil, fmt.Errorf("%w: private key is not hex: %v", keys.ErrInvalidKey, err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: expected %d byte ed25519 seed, got %d",
				keys.ErrInvalidKey, ed25519.SeedSize, len(seed))
		}
		priv := ed25519.NewKeyFromSeed(seed)

		// 种子派生的公钥必须与声明的公钥一致
		derived := priv.Public().(ed25519.PublicKey) //nolint:errcheck // 类型断言安全
		if subtle.ConstantTimeCompare(derived, pub) != 1 {
			return nil, fmt.Errorf("%w: private key does not match public key", keys.ErrInvalidKey)
		}
		alg.priv = priv
	}

	return alg, nil
}

func (a *ed25519Algorithm) sign(data []byte) ([]byte, error) {
	return ed25519.Sign(a.priv, data), nil
}

func (a *ed25519Algorithm) verify(data, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(a.pub, data, sig)
}

// generateEd25519Key 生成 Ed25519 密钥对
func generateEd25519Key() (*keys.Key, error) {
	pub, priv, err := ed25519.GenerateKey(cryptoRand)
	if err != nil {
		return nil, err
	}

	return keys.New(keys.KeyTypeEd25519, "ed25519", keys.KeyVal{
		Public:  hex.EncodeToString(pub),
		Private: hex.EncodeToString(priv.Seed()),
	})
}
