package openpgp

import (
	"crypto/dsa" //nolint:staticcheck
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"math/big"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ============================================================================
//                              验签
// ============================================================================

// VerificationResult 验签的结构化结论
//
// Verified 为 false 时 Reason 说明失败点；结构性错误（策略
// 拒绝、选不到键、密钥过期、输入畸形）不产生 Result，以 error
// 上抛。
type VerificationResult struct {
	// Verified 签名是否通过密码学验证
	Verified bool

	// KeyID 实际选中的验证密钥指纹
	KeyID string

	// Reason 未通过时的失败点
	Reason string
}

// Verify 以当前时间验证二进制文档签名，见 VerifyAt
func Verify(content []byte, sig *SignaturePacket, bundle *Bundle, policy *AlgorithmPolicy) (bool, error) {
	return VerifyAt(content, sig, bundle, policy, time.Now())
}

// VerifyAt 验证二进制文档签名
//
// 签名无效返回 (false, nil)；策略拒绝、选不到键、密钥过期或
// 输入畸形返回错误。policy 为 nil 时使用 DefaultPolicy。
func VerifyAt(content []byte, sig *SignaturePacket, bundle *Bundle, policy *AlgorithmPolicy, now time.Time) (bool, error) {
	res, err := VerifyDetailedAt(content, sig, bundle, policy, now)
	if err != nil {
		return false, err
	}
	return res.Verified, nil
}

// VerifyDetailedAt 验证二进制文档签名并返回结构化结论
//
// 流程：策略检查、按签发者在 bundle 中选键、有效期检查、
// 摘要重建、密码学验证。
func VerifyDetailedAt(content []byte, sig *SignaturePacket, bundle *Bundle, policy *AlgorithmPolicy, now time.Time) (*VerificationResult, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if !policy.AllowHash(sig.HashAlgo) {
		return nil, fmt.Errorf("%w: hash %s", ErrAlgorithmRejected, sig.HashAlgo)
	}
	if !policy.AllowPublicKey(sig.PubKeyAlgo) {
		return nil, fmt.Errorf("%w: public key algorithm %s", ErrAlgorithmRejected, sig.PubKeyAlgo)
	}

	issuer := sig.Issuer()
	if issuer == "" {
		return nil, fmt.Errorf("%w: signature carries no issuer", ErrKeyNotFound)
	}
	key, err := bundle.FindKey(issuer)
	if err != nil {
		return nil, err
	}
	if key.Expired(now) {
		exp, _ := key.ExpiresAt()
		return nil, fmt.Errorf("%w: key %s expired %s", ErrKeyExpired, key.Key.KeyID, exp.Format(time.RFC3339))
	}
	if key.Key.Algorithm != sig.PubKeyAlgo &&
		!(key.Key.Algorithm == PubKeyRSA && sig.PubKeyAlgo == PubKeyRSASignOnly) &&
		!(key.Key.Algorithm == PubKeyRSASignOnly && sig.PubKeyAlgo == PubKeyRSA) {
		return nil, fmt.Errorf("key %s algorithm %s does not match signature algorithm %s",
			key.Key.KeyID, key.Key.Algorithm, sig.PubKeyAlgo)
	}

	digest, err := signatureDigest(content, sig)
	if err != nil {
		return nil, err
	}

	res := &VerificationResult{KeyID: key.Key.Fingerprint}

	// left16 不匹配必然验签失败，先行短路
	if digest[0] != sig.Left16[0] || digest[1] != sig.Left16[1] {
		log.Debug("left16 mismatch", "issuer", issuer)
		res.Reason = "digest prefix mismatch"
		return res, nil
	}

	ok, err := verifyDigest(key.Key, sig, digest)
	if err != nil {
		return nil, err
	}
	res.Verified = ok
	if !ok {
		res.Reason = "cryptographic check failed"
	}
	return res, nil
}

// signatureDigest 重建 v4 签名摘要
//
// 输入为 数据 || HashedRegion || 0x04 0xFF || uint32 长度。
func signatureDigest(content []byte, sig *SignaturePacket) ([]byte, error) {
	h := sig.HashAlgo.newHash()
	if h == nil {
		return nil, fmt.Errorf("%w: hash %s", ErrAlgorithmRejected, sig.HashAlgo)
	}
	h.Write(content)
	h.Write(sig.HashedRegion)
	h.Write(sig.trailer())
	return h.Sum(nil), nil
}

// verifyDigest 对重建的摘要做密码学验证
func verifyDigest(key *PublicKeyPacket, sig *SignaturePacket, digest []byte) (bool, error) {
	switch {
	case key.RSA != nil:
		return verifyRSA(key.RSA, sig, digest)
	case key.DSA != nil:
		r := new(big.Int).SetBytes(sig.R)
		s := new(big.Int).SetBytes(sig.S)
		return dsa.Verify(key.DSA, digest, r, s), nil
	case key.ECDSA != nil:
		r := new(big.Int).SetBytes(sig.R)
		s := new(big.Int).SetBytes(sig.S)
		return ecdsa.Verify(key.ECDSA, digest, r, s), nil
	case key.Secp256k1 != nil:
		return verifySecp256k1(key.Secp256k1, sig, digest), nil
	case key.Ed25519 != nil:
		return verifyEd25519(key.Ed25519, sig, digest), nil
	default:
		return false, fmt.Errorf("key %s has no usable public key material", key.KeyID)
	}
}

func verifyRSA(key *RSAPublicKey, sig *SignaturePacket, digest []byte) (bool, error) {
	h := sig.HashAlgo.cryptoHash()
	if h == 0 {
		return false, fmt.Errorf("%w: hash %s", ErrAlgorithmRejected, sig.HashAlgo)
	}
	pub := &rsa.PublicKey{N: key.N, E: key.E}

	// MPI 会剥掉前导零，验证前补齐到模长
	sigBytes := sig.RSASig
	if k := pub.Size(); len(sigBytes) < k {
		padded := make([]byte, k)
		copy(padded[k-len(sigBytes):], sigBytes)
		sigBytes = padded
	}
	if err := rsa.VerifyPKCS1v15(pub, h, digest, sigBytes); err != nil {
		return false, nil
	}
	return true, nil
}

func verifySecp256k1(pub *secp256k1.PublicKey, sig *SignaturePacket, digest []byte) bool {
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig.R); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig.S); overflow {
		return false
	}
	return secpecdsa.NewSignature(&r, &s).Verify(digest, pub)
}

func verifyEd25519(pub ed25519.PublicKey, sig *SignaturePacket, digest []byte) bool {
	// R、S 各为 ≤32 字节的原生 MPI，左补零拼成 64 字节签名；
	// EdDSA 签的是摘要本身
	if len(sig.R) > 32 || len(sig.S) > 32 {
		return false
	}
	raw := make([]byte, ed25519.SignatureSize)
	copy(raw[32-len(sig.R):32], sig.R)
	copy(raw[64-len(sig.S):], sig.S)
	return ed25519.Verify(pub, digest, raw)
}
