// Package softkey 实现进程内软件密钥的签名与验签后端
//
// 支持的 scheme：
//   - rsassa-pss-sha256 / sha384 / sha512（盐长等于摘要长度）
//   - rsa-pkcs1v15-sha256
//   - ecdsa-sha2-nistp256 / nistp384（DER 编码签名）
//   - ecdsa-secp256k1-sha256
//   - ed25519
//
// 密码学原语由可信依赖提供（crypto/*、decred secp256k1），
// 本包负责 scheme 到参数的映射、密钥材料与 scheme 的一致性
// 校验，以及把签名编码错误归一为"验签失败"而非异常。
package softkey

import (
	"context"
	"crypto"
	"crypto/rand"
	"fmt"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

// algorithm 单一 scheme 的签名/验签实现
//
// verify 对任何格式错误的签名返回 false，不返回错误。
type algorithm interface {
	sign(data []byte) ([]byte, error)
	verify(data, sig []byte) bool
}

// ============================================================================
//                              Signer / Verifier
// ============================================================================

// Signer 软件密钥签名器
type Signer struct {
	key *keys.Key
	alg algorithm
}

// NewSigner 从含私钥材料的 Key 构造签名器
func NewSigner(key *keys.Key) (*Signer, error) {
	if !key.CanSign() {
		return nil, keys.ErrNoPrivateKey
	}
	alg, err := newAlgorithm(key, true)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key, alg: alg}, nil
}

// Sign 对数据签名
//
// 返回的签名与本密钥的 keyid 绑定。
func (s *Signer) Sign(_ context.Context, data []byte) (*keys.Signature, error) {
	raw, err := s.alg.sign(data)
	if err != nil {
		return nil, fmt.Errorf("softkey sign: %w", err)
	}
	return &keys.Signature{KeyID: s.key.KeyID, Sig: raw}, nil
}

// Public 返回签名器对应的公钥记录
func (s *Signer) Public() *keys.Key {
	return s.key.Public()
}

// Verifier 软件密钥验签器
type Verifier struct {
	key *keys.Key
	alg algorithm
}

// NewVerifier 从公钥 Key 构造验签器
func NewVerifier(key *keys.Key) (*Verifier, error) {
	alg, err := newAlgorithm(key, false)
	if err != nil {
		return nil, err
	}
	return &Verifier{key: key, alg: alg}, nil
}

// Verify 检查签名
//
// keyid 不匹配或签名编码损坏（长度错误、非法曲线点）一律返回
// (false, nil)；仅输入结构错误返回 error。
func (v *Verifier) Verify(data []byte, sig *keys.Signature) (bool, error) {
	if sig == nil {
		return false, keys.ErrInvalidSignature
	}
	if sig.KeyID != v.key.KeyID {
		return false, nil
	}
	return v.alg.verify(data, sig.Sig), nil
}

// VerifierFactory 供注册表使用的 Verifier 工厂
func VerifierFactory(key *keys.Key) (signer.Verifier, error) {
	return NewVerifier(key)
}

// ============================================================================
//                              密钥生成
// ============================================================================

// GenerateKey 生成指定 scheme 的新密钥对
//
// 返回的 Key 同时包含公私钥材料。RSA 使用默认 3072 位，
// 需要其他长度时使用 GenerateRSAKey。
func GenerateKey(scheme string) (*keys.Key, error) {
	p, ok := schemeParams[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: scheme %q", signer.ErrUnsupportedAlgorithm, scheme)
	}

	switch {
	case p.keytype == keys.KeyTypeRSA:
		return GenerateRSAKey(scheme, rsaDefaultKeySize)
	case p.secp256k1:
		return generateSecp256k1Key(scheme)
	case p.keytype == keys.KeyTypeECDSA:
		return generateECDSAKey(scheme, p.curve)
	case p.keytype == keys.KeyTypeEd25519:
		return generateEd25519Key()
	default:
		return nil, fmt.Errorf("%w: scheme %q", signer.ErrUnsupportedAlgorithm, scheme)
	}
}

// newAlgorithm 解析 Key 的材料并构造对应算法实现
func newAlgorithm(key *keys.Key, needPrivate bool) (algorithm, error) {
	p, err := paramsFor(key.KeyType, key.Scheme)
	if err != nil {
		return nil, err
	}

	switch {
	case p.keytype == keys.KeyTypeRSA:
		return newRSAAlgorithm(key, p, needPrivate)
	case p.secp256k1:
		return newSecp256k1Algorithm(key, p, needPrivate)
	case p.keytype == keys.KeyTypeECDSA:
		return newECDSAAlgorithm(key, p, needPrivate)
	default:
		return newEd25519Algorithm(key, needPrivate)
	}
}

// cryptoRand 签名与生成密钥共用的随机源
var cryptoRand = rand.Reader

// hashSum 按 scheme 指定的摘要算法计算数据摘要
func hashSum(h crypto.Hash, data []byte) []byte {
	hasher := h.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}
