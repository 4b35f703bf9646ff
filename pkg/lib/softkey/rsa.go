package softkey

import (
	"crypto/rsa"
	"fmt"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

// RSA 密钥大小限制（位）
const (
	rsaMinKeySize     = 2048
	rsaDefaultKeySize = 3072
	rsaMaxKeySize     = 8192
)

// rsaAlgorithm RSA 签名/验签实现
//
// PSS 模式下盐长固定等于摘要长度。
type rsaAlgorithm struct {
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
	p    params
}

func newRSAAlgorithm(key *keys.Key, p params, needPrivate bool) (*rsaAlgorithm, error) {
	pubAny, err := keys.ParsePublicKeyPEM(key.KeyVal.Public)
	if err != nil {
		return nil, err
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", keys.ErrInvalidKey)
	}
	if bits := pub.N.BitLen(); bits < rsaMinKeySize || bits > rsaMaxKeySize {
		return nil, fmt.Errorf("%w: RSA key size %d out of range", keys.ErrInvalidKey, bits)
	}

	alg := &rsaAlgorithm{pub: pub, p: p}

	if needPrivate {
		privAny, err := keys.ParsePrivateKeyPEM(key.KeyVal.Private)
		if err != nil {
			return nil, err
		}
		priv, ok := privAny.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", keys.ErrInvalidKey)
		}
		if priv.N.Cmp(pub.N) != 0 {
			return nil, fmt.Errorf("%w: private key does not match public key", keys.ErrInvalidKey)
		}
		alg.priv = priv
	}

	return alg, nil
}

func (a *rsaAlgorithm) sign(data []byte) ([]byte, error) {
	digest := hashSum(a.p.hash, data)

	if a.p.pss {
		opts := &rsa.PSSOptions{SaltLength: a.p.hash.Size(), Hash: a.p.hash}
		return rsa.SignPSS(cryptoRand, a.priv, a.p.hash, digest, opts)
	}
	return rsa.SignPKCS1v15(cryptoRand, a.priv, a.p.hash, digest)
}

func (a *rsaAlgorithm) verify(data, sig []byte) bool {
	digest := hashSum(a.p.hash, data)

	if a.p.pss {
		opts := &rsa.PSSOptions{SaltLength: a.p.hash.Size(), Hash: a.p.hash}
		return rsa.VerifyPSS(a.pub, a.p.hash, digest, sig, opts) == nil
	}
	return rsa.VerifyPKCS1v15(a.pub, a.p.hash, digest, sig) == nil
}

// GenerateRSAKey 生成指定大小的 RSA 密钥对
func GenerateRSAKey(scheme string, bits int) (*keys.Key, error) {
	if _, err := paramsFor(keys.KeyTypeRSA, scheme); err != nil {
		return nil, err
	}
	if bits < rsaMinKeySize || bits > rsaMaxKeySize {
		return nil, fmt.Errorf("RSA key size must be between %d and %d bits", rsaMinKeySize, rsaMaxKeySize)
	}

	priv, err := rsa.GenerateKey(cryptoRand, bits)
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

	return keys.New(keys.KeyTypeRSA, scheme, keys.KeyVal{Public: pubPEM, Private: privPEM})
}
