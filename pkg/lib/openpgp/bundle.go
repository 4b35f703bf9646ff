package openpgp

import (
	"strings"
	"time"
)

// 签名类型（RFC 4880 §5.2.1），bundle 解析只关心这几个
const (
	sigTypeBinary        uint8 = 0x00
	sigTypeGenericCert   uint8 = 0x10
	sigTypePositiveCert  uint8 = 0x13
	sigTypeSubkeyBinding uint8 = 0x18
)

// ============================================================================
//                              BundleKey
// ============================================================================

// BundleKey bundle 内的一把公钥及其自签名声明的有效期
type BundleKey struct {
	// Key 解码后的公钥包
	Key *PublicKeyPacket

	// Validity 自签名声明的有效期，0 表示不过期
	Validity time.Duration

	selfSigTime time.Time
}

// ExpiresAt 返回过期时刻
//
// 过期时刻为密钥创建时间加有效期。未声明有效期时 ok 为 false。
func (k *BundleKey) ExpiresAt() (time.Time, bool) {
	if k.Validity == 0 {
		return time.Time{}, false
	}
	return k.Key.CreationTime.Add(k.Validity), true
}

// Expired 密钥在 now 时刻是否已过期
func (k *BundleKey) Expired(now time.Time) bool {
	exp, ok := k.ExpiresAt()
	return ok && !now.Before(exp)
}

// absorb 吸收一条自签名，后出的自签名覆盖先出的
func (k *BundleKey) absorb(sig *SignaturePacket) {
	created, ok := sig.CreationTime()
	if !ok || created.Before(k.selfSigTime) {
		return
	}
	k.selfSigTime = created
	if secs, ok := sig.KeyExpiration(); ok {
		k.Validity = time.Duration(secs) * time.Second
	} else {
		k.Validity = 0
	}
}

// ============================================================================
//                              Bundle
// ============================================================================

// Bundle 一把传输格式公钥的完整视图：主密钥、用户标识与子密钥
//
// 对应 gpg --export 产出的包序列。
type Bundle struct {
	// Primary 主密钥
	Primary *BundleKey

	// UserIDs 用户标识字符串
	UserIDs []string

	// Subkeys 子密钥，按出现顺序
	Subkeys []*BundleKey

	raw []byte
}

// Encoded 返回 bundle 的原始二进制包流
func (b *Bundle) Encoded() []byte {
	return b.raw
}

// ParseBundle 从二进制包流解析公钥 bundle
//
// 首个包必须是公钥包。认证自签名（0x10-0x13）作用于主密钥，
// 子密钥绑定签名（0x18）作用于最近出现的子密钥。Trust 包与
// 未知包跳过。
func ParseBundle(data []byte) (*Bundle, error) {
	packets, err := ParsePackets(data).All()
	if err != nil {
		return nil, err
	}
	if len(packets) == 0 || packets[0].Tag != TagPublicKey {
		return nil, ErrNoPublicKeyPacket
	}

	primary, err := ParsePublicKey(packets[0])
	if err != nil {
		return nil, err
	}
	bundle := &Bundle{Primary: &BundleKey{Key: primary}, raw: data}

	// current 指向自签名的归属密钥
	current := bundle.Primary
	for _, p := range packets[1:] {
		switch p.Tag {
		case TagUserID:
			bundle.UserIDs = append(bundle.UserIDs, string(p.Body))
			current = bundle.Primary
		case TagPublicSubkey:
			sub, err := ParsePublicKey(p)
			if err != nil {
				return nil, err
			}
			bk := &BundleKey{Key: sub}
			bundle.Subkeys = append(bundle.Subkeys, bk)
			current = bk
		case TagSignature:
			sig, err := ParseSignature(p)
			if err != nil {
				// 不认识算法的自签名不影响密钥使用
				if _, ok := err.(*PacketFormatError); ok {
					log.Debug("skipping undecodable signature", "offset", p.Offset, "err", err)
					continue
				}
				return nil, err
			}
			switch sig.SigType {
			case sigTypeSubkeyBinding:
				if current != bundle.Primary {
					current.absorb(sig)
				}
			case sigTypeGenericCert, sigTypeGenericCert + 1, sigTypeGenericCert + 2, sigTypePositiveCert:
				bundle.Primary.absorb(sig)
			}
		case TagTrust:
			// gpg 本地信任数据，与验签无关
		default:
			log.Debug("skipping packet", "tag", p.Tag, "offset", p.Offset)
		}
	}

	return bundle, nil
}

// ParseBundleArmored 从 ASCII armor 文本解析公钥 bundle
func ParseBundleArmored(text string) (*Bundle, error) {
	data, _, err := Dearmor(text)
	if err != nil {
		return nil, err
	}
	return ParseBundle(data)
}

// FindKey 按签发者标识定位密钥
//
// issuer 为 40 位指纹或 16 位短 keyid（大小写不敏感）。先查
// 主密钥再查子密钥，无匹配返回 ErrKeyNotFound。
func (b *Bundle) FindKey(issuer string) (*BundleKey, error) {
	issuer = strings.ToLower(issuer)
	for _, k := range append([]*BundleKey{b.Primary}, b.Subkeys...) {
		if k.Key.Fingerprint == issuer || k.Key.KeyID == issuer {
			return k, nil
		}
	}
	return nil, ErrKeyNotFound
}
