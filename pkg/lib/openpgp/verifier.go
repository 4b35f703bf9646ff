package openpgp

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

// schemePrefix 通用密钥记录里 OpenPGP scheme 的前缀
const schemePrefix = "pgp+"

// KeyFromBundle 把公钥 bundle 封装成通用密钥记录
//
// KeyID 为主密钥指纹（40 位十六进制）而非规范化 JSON 摘要：
// 指纹由传输格式字节决定，两种表示无法互算。KeyVal.Public 为
// armor 文本。
func KeyFromBundle(b *Bundle) *keys.Key {
	return &keys.Key{
		KeyID:   b.Primary.Key.Fingerprint,
		KeyType: keys.KeyTypeOther,
		Scheme:  schemePrefix + b.Primary.Key.Algorithm.String(),
		KeyVal: keys.KeyVal{
			Public: Armor("PUBLIC KEY BLOCK", b.Encoded()),
		},
	}
}

// BundleFromKey 从通用密钥记录还原公钥 bundle
func BundleFromKey(key *keys.Key) (*Bundle, error) {
	if !strings.HasPrefix(key.Scheme, schemePrefix) {
		return nil, fmt.Errorf("%w: scheme %q is not an OpenPGP scheme",
			signer.ErrUnsupportedAlgorithm, key.Scheme)
	}
	bundle, err := ParseBundleArmored(key.KeyVal.Public)
	if err != nil {
		return nil, err
	}
	if bundle.Primary.Key.Fingerprint != strings.ToLower(key.KeyID) {
		return nil, fmt.Errorf("%w: key id %s does not match bundle fingerprint %s",
			keys.ErrKeyIDMismatch, key.KeyID, bundle.Primary.Key.Fingerprint)
	}
	return bundle, nil
}

// ============================================================================
//                              Verifier
// ============================================================================

// Verifier 通用分发框架下的 OpenPGP 验签器
//
// Signature.Sig 为完整的二进制签名包流（AgentSigner 的产出）。
type Verifier struct {
	key    *keys.Key
	bundle *Bundle
	policy *AlgorithmPolicy
}

// NewVerifier 构造验签器，policy 为 nil 时使用 DefaultPolicy
func NewVerifier(key *keys.Key, policy *AlgorithmPolicy) (*Verifier, error) {
	bundle, err := BundleFromKey(key)
	if err != nil {
		return nil, err
	}
	return &Verifier{key: key, bundle: bundle, policy: policy}, nil
}

// Verify 验证签名
//
// keyid 不匹配或密码学验证失败返回 (false, nil)；签名包畸形、
// 策略拒绝或密钥过期返回错误。
func (v *Verifier) Verify(data []byte, sig *keys.Signature) (bool, error) {
	if sig == nil {
		return false, fmt.Errorf("%w: nil signature", keys.ErrInvalidSignature)
	}
	if !strings.EqualFold(sig.KeyID, v.key.KeyID) {
		return false, nil
	}

	packet, err := ParsePackets(sig.Sig).Next()
	if err != nil {
		return false, err
	}
	sp, err := ParseSignature(packet)
	if err != nil {
		return false, err
	}

	return Verify(data, sp, v.bundle, v.policy)
}

// Public 返回验签器对应的公钥记录
func (v *Verifier) Public() *keys.Key {
	return v.key.Public()
}

// VerifierFactory 按 "pgp+" 前缀注册的验签器工厂
func VerifierFactory(key *keys.Key) (signer.Verifier, error) {
	return NewVerifier(key, nil)
}
