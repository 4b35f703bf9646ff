package softkey

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

// secp256k1 密钥常量
const (
	// secp256k1PublicKeySize 压缩公钥大小（33 字节）
	secp256k1PublicKeySize = 33
	// secp256k1PrivateKeySize 私钥大小（32 字节）
	secp256k1PrivateKeySize = 32
)

// secp256k1Algorithm secp256k1 曲线 ECDSA 实现
//
// 材料为十六进制编码：公钥为 33 字节压缩点，私钥 32 字节标量。
// 曲线运算委托给 decred 实现。
type secp256k1Algorithm struct {
	pub  *secp256k1.PublicKey
	priv *secp256k1.PrivateKey
	p    params
}

func newSecp256k1Algorithm(key *keys.Key, p params, needPrivate bool) (*secp256k1Algorithm, error) {
	pubRaw, err := hex.DecodeString(key.KeyVal.Public)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex: %v", keys.ErrInvalidKey, err)
	}
	if len(pubRaw) != secp256k1PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d byte compressed point, got %d",
			keys.ErrInvalidKey, secp256k1PublicKeySize, len(pubRaw))
	}
	pub, err := secp256k1.ParsePubKey(pubRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keys.ErrInvalidKey, err)
	}

	alg := &secp256k1Algorithm{pub: pub, p: p}

	if needPrivate {
		privRaw, err := hex.DecodeString(key.KeyVal.Private)
		if err != nil {
			return nil, fmt.Errorf("%w: private key is not hex: %v", keys.ErrInvalidKey, err)
		}
		if len(privRaw) != secp256k1PrivateKeySize {
			return nil, fmt.Errorf("%w: expected %d byte scalar, got %d",
				keys.ErrInvalidKey, secp256k1PrivateKeySize, len(privRaw))
		}
		priv := secp256k1.PrivKeyFromBytes(privRaw)
		if !priv.PubKey().IsEqual(pub) {
			return nil, fmt.Errorf("%w: private key does not match public key", keys.ErrInvalidKey)
		}
		alg.priv = priv
	}

	return alg, nil
}

func (a *secp256k1Algorithm) sign(data []byte) ([]byte, error) {
	digest := hashSum(a.p.hash, data)
	return secpecdsa.Sign(a.priv, digest).Serialize(), nil
}

func (a *secp256k1Algorithm) verify(data, sig []byte) bool {
	parsed, err := secpecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := hashSum(a.p.hash, data)
	return parsed.Verify(digest, a.pub)
}

// generateSecp256k1Key 生成 secp256k1 密钥对
func generateSecp256k1Key(scheme string) (*keys.Key, error) {
	priv, err := secp256k1.GeneratePrivateKeyFromRand(cryptoRand)
	if err != nil {
		return nil, err
	}

	return keys.New(keys.KeyTypeECDSA, scheme, keys.KeyVal{
		Public:  hex.EncodeToString(priv.PubKey().SerializeCompressed()),
		Private: hex.EncodeToString(priv.Serialize()),
	})
}
