package openpgp

import (
	"crypto"
	"fmt"
	"hash"

	// 注册 stdlib 哈希实现
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/sha3"
)

// ============================================================================
//                              算法标识
// ============================================================================

// PublicKeyAlgorithm RFC 4880 §9.1 公钥算法编号
type PublicKeyAlgorithm uint8

const (
	// PubKeyRSA RSA 签名与加密 (1)
	PubKeyRSA PublicKeyAlgorithm = 1
	// PubKeyRSASignOnly RSA 仅签名 (3)，验签等同 PubKeyRSA
	PubKeyRSASignOnly PublicKeyAlgorithm = 3
	// PubKeyDSA DSA (17)
	PubKeyDSA PublicKeyAlgorithm = 17
	// PubKeyECDSA ECDSA (19)
	PubKeyECDSA PublicKeyAlgorithm = 19
	// PubKeyEdDSA EdDSA (22)
	PubKeyEdDSA PublicKeyAlgorithm = 22
)

// String 返回公钥算法名称
func (a PublicKeyAlgorithm) String() string {
	switch a {
	case PubKeyRSA, PubKeyRSASignOnly:
		return "rsa"
	case PubKeyDSA:
		return "dsa"
	case PubKeyECDSA:
		return "ecdsa"
	case PubKeyEdDSA:
		return "eddsa"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// HashAlgorithm RFC 4880 §9.4 哈希算法编号
type HashAlgorithm uint8

const (
	// HashMD5 MD5 (1)
	HashMD5 HashAlgorithm = 1
	// HashSHA1 SHA-1 (2)
	HashSHA1 HashAlgorithm = 2
	// HashRIPEMD160 RIPEMD-160 (3)
	HashRIPEMD160 HashAlgorithm = 3
	// HashSHA256 SHA-256 (8)
	HashSHA256 HashAlgorithm = 8
	// HashSHA384 SHA-384 (9)
	HashSHA384 HashAlgorithm = 9
	// HashSHA512 SHA-512 (10)
	HashSHA512 HashAlgorithm = 10
	// HashSHA224 SHA-224 (11)
	HashSHA224 HashAlgorithm = 11
	// HashSHA3_256 SHA3-256 (12)
	HashSHA3_256 HashAlgorithm = 12
	// HashSHA3_512 SHA3-512 (14)
	HashSHA3_512 HashAlgorithm = 14
)

// String 返回哈希算法名称
func (h HashAlgorithm) String() string {
	switch h {
	case HashMD5:
		return "md5"
	case HashSHA1:
		return "sha1"
	case HashRIPEMD160:
		return "ripemd160"
	case HashSHA256:
		return "sha256"
	case HashSHA384:
		return "sha384"
	case HashSHA512:
		return "sha512"
	case HashSHA224:
		return "sha224"
	case HashSHA3_256:
		return "sha3-256"
	case HashSHA3_512:
		return "sha3-512"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(h))
	}
}

// newHash 返回哈希算法的实现，不支持的编号返回 nil
func (h HashAlgorithm) newHash() hash.Hash {
	switch h {
	case HashMD5:
		return crypto.MD5.New()
	case HashSHA1:
		return crypto.SHA1.New()
	case HashSHA224:
		return crypto.SHA224.New()
	case HashSHA256:
		return sha256.New()
	case HashSHA384:
		return crypto.SHA384.New()
	case HashSHA512:
		return crypto.SHA512.New()
	case HashSHA3_256:
		return sha3.New256()
	case HashSHA3_512:
		return sha3.New512()
	default:
		return nil
	}
}

// cryptoHash 返回对应的 crypto.Hash（用于 RSA PKCS#1 v1.5 前缀），
// 无对应项返回 0
func (h HashAlgorithm) cryptoHash() crypto.Hash {
	switch h {
	case HashMD5:
		return crypto.MD5
	case HashSHA1:
		return crypto.SHA1
	case HashSHA224:
		return crypto.SHA224
	case HashSHA256:
		return crypto.SHA256
	case HashSHA384:
		return crypto.SHA384
	case HashSHA512:
		return crypto.SHA512
	case HashSHA3_256:
		return crypto.SHA3_256
	case HashSHA3_512:
		return crypto.SHA3_512
	default:
		return 0
	}
}

// ============================================================================
//                              算法策略
// ============================================================================

// AlgorithmPolicy 验签时接受的算法白名单
//
// 策略是纯数据，调用方可基于 DefaultPolicy 收窄或放宽。
// 不在表内的算法导致验签直接失败，不回退。
type AlgorithmPolicy struct {
	// Hashes 接受的哈希算法
	Hashes map[HashAlgorithm]bool

	// PublicKeys 接受的公钥算法
	PublicKeys map[PublicKeyAlgorithm]bool
}

// DefaultPolicy 返回默认策略
//
// 拒绝 MD5、SHA-1、RIPEMD-160 等已攻破或不推荐的哈希。
func DefaultPolicy() *AlgorithmPolicy {
	return &AlgorithmPolicy{
		Hashes: map[HashAlgorithm]bool{
			HashSHA224:   true,
			HashSHA256:   true,
			HashSHA384:   true,
			HashSHA512:   true,
			HashSHA3_256: true,
			HashSHA3_512: true,
		},
		PublicKeys: map[PublicKeyAlgorithm]bool{
			PubKeyRSA:         true,
			PubKeyRSASignOnly: true,
			PubKeyDSA:         true,
			PubKeyECDSA:       true,
			PubKeyEdDSA:       true,
		},
	}
}

// AllowHash 哈希算法是否在策略内
func (p *AlgorithmPolicy) AllowHash(h HashAlgorithm) bool {
	return p != nil && p.Hashes[h]
}

// AllowPublicKey 公钥算法是否在策略内
func (p *AlgorithmPolicy) AllowPublicKey(a PublicKeyAlgorithm) bool {
	return p != nil && p.PublicKeys[a]
}
