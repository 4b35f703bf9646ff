package softkey

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

// ecdsaAlgorithm NIST 曲线 ECDSA 实现
//
// 签名为 ASN.1 DER 编码，与主流元数据格式互换。
type ecdsaAlgorithm struct {
	pub  *ecdsa.PublicKey
	priv *ecdsa.PrivateKey
	p    params
}

func newECDSAAlgorithm(key *keys.Key, p params, needPrivate bool) (*ecdsaAlgorithm, error) {
	pubAny, err := keys.ParsePublicKeyPEM(key.KeyVal.Public)
	if err != nil {
		return nil, err
	}
	pub, ok := pubAny.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA public key", keys.ErrInvalidKey)
	}
	// 曲线必须与 scheme 声明一致
	if pub.Curve != p.curve {
		return nil, fmt.Errorf("%w: curve %s does not match scheme %s curve",
			keys.ErrInvalidKey, pub.Curve.Params().Name, p.curve.Params().Name)
	}

	alg := &ecdsaAlgorithm{pub: pub, p: p}

	if needPrivate {
		privAny, err := keys.ParsePrivateKeyPEM(key.KeyVal.Private)
		if err != nil {
			return nil, err
		}
		priv, ok := privAny.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an ECDSA private key", keys.ErrInvalidKey)
		}
		if priv.X.Cmp(pub.X) != 0 || priv.Y.Cmp(pub.Y) != 0 {
			return nil, fmt.Errorf("%w: private key does not match public key", keys.ErrInvalidKey)
		}
		alg.priv = priv
	}

	return alg, nil
}

func (a *ecdsaAlgorithm) sign(data []byte) ([]byte, error) {
	digest := hashSum(a.p.hash, data)
	return ecdsa.SignASN1(cryptoRand, a.priv, digest)
}

func (a *ecdsaAlgorithm) verify(data, sig []byte) bool {
	digest := hashSum(a.p.hash, data)
	// DER 解析失败在 VerifyASN1 内归一为 false
	return ecdsa.VerifyASN1(a.pub, digest, sig)
}

// generateECDSAKey 生成 NIST 曲线 ECDSA 密钥对
func generateECDSAKey(scheme string, curve elliptic.Curve) (*keys.Key, error) {
	priv, err := ecdsa.GenerateKey(curve, cryptoRand)
	if err != nil {
		return nil, err
	}

	pubPEM, err := keys.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	privPEM, err := keys.EncodePrivateKeyPEM(priv)
	if err != nil {
		return nil, err
	}

	return keys.New(keys.KeyTypeECDSA, scheme, keys.KeyVal{Public: pubPEM, Private: privPEM})
}
