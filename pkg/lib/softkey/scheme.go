package softkey

import (
	"crypto"
	"crypto/elliptic"
	"fmt"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

// params 由 scheme 字符串决定的签名参数
//
// scheme 同时决定摘要算法、填充方式和曲线，密钥材料必须与之
// 匹配，不允许运行时猜测。
type params struct {
	keytype keys.KeyType

	// hash 摘要算法；ed25519 无预哈希，保持 0
	hash crypto.Hash

	// pss RSA 是否使用 PSS 填充（盐长等于摘要长度）
	pss bool

	// curve NIST 曲线；secp256k1 与非 ECDSA scheme 为 nil
	curve elliptic.Curve

	// secp256k1 是否为 secp256k1 曲线
	secp256k1 bool
}

// schemeParams 软件后端支持的全部 scheme
var schemeParams = map[string]params{
	"rsassa-pss-sha256":      {keytype: keys.KeyTypeRSA, hash: crypto.SHA256, pss: true},
	"rsassa-pss-sha384":      {keytype: keys.KeyTypeRSA, hash: crypto.SHA384, pss: true},
	"rsassa-pss-sha512":      {keytype: keys.KeyTypeRSA, hash: crypto.SHA512, pss: true},
	"rsa-pkcs1v15-sha256":    {keytype: keys.KeyTypeRSA, hash: crypto.SHA256},
	"ecdsa-sha2-nistp256":    {keytype: keys.KeyTypeECDSA, hash: crypto.SHA256, curve: elliptic.P256()},
	"ecdsa-sha2-nistp384":    {keytype: keys.KeyTypeECDSA, hash: crypto.SHA384, curve: elliptic.P384()},
	"ecdsa-secp256k1-sha256": {keytype: keys.KeyTypeECDSA, hash: crypto.SHA256, secp256k1: true},
	"ed25519":                {keytype: keys.KeyTypeEd25519},
}

// paramsFor 查找 scheme 对应的签名参数并核对密钥类型
func paramsFor(keytype keys.KeyType, scheme string) (params, error) {
	p, ok := schemeParams[scheme]
	if !ok {
		return params{}, fmt.Errorf("%w: scheme %q", signer.ErrUnsupportedAlgorithm, scheme)
	}
	if p.keytype != keytype {
		return params{}, fmt.Errorf("%w: scheme %q requires keytype %q, got %q",
			signer.ErrUnsupportedAlgorithm, scheme, p.keytype, keytype)
	}
	return p, nil
}
