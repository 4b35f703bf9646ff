package openpgp

import (
	"encoding/binary"
	"encoding/hex"
	"time"
)

// SignaturePacket 解码后的 v4 签名包
type SignaturePacket struct {
	// Version 包版本，仅支持 4
	Version uint8

	// SigType 签名类型（0x00 二进制文档、0x13 用户标识认证、
	// 0x18 子密钥绑定等）
	SigType uint8

	// PubKeyAlgo 公钥算法
	PubKeyAlgo PublicKeyAlgorithm

	// HashAlgo 哈希算法
	HashAlgo HashAlgorithm

	// Hashed 被哈希保护的子包
	Hashed []Subpacket

	// Unhashed 不受哈希保护的子包，仅作提示
	Unhashed []Subpacket

	// HashedRegion 包体中参与摘要的前缀：版本字节到被哈希
	// 子包区末尾。验签 trailer 直接取自这里，不重新序列化。
	HashedRegion []byte

	// Left16 摘要前 2 字节，验签前的快速排错
	Left16 [2]byte

	// RSASig RSA 签名 MPI（仅 RSA）
	RSASig []byte

	// R, S 签名标量（DSA / ECDSA / EdDSA）
	R, S []byte
}

// ParseSignature 解码签名包体
func ParseSignature(p *Packet) (*SignaturePacket, error) {
	if p.Tag != TagSignature {
		return nil, formatErr(p.Offset, "packet tag %s is not a signature", p.Tag)
	}

	c := &cursor{data: p.Body, base: p.Offset}

	version, err := c.byte()
	if err != nil {
		return nil, err
	}
	if version != 4 {
		return nil, formatErr(p.Offset, "unsupported signature version %d", version)
	}

	sigType, err := c.byte()
	if err != nil {
		return nil, err
	}
	pkAlgo, err := c.byte()
	if err != nil {
		return nil, err
	}
	hashAlgo, err := c.byte()
	if err != nil {
		return nil, err
	}

	hashedLen, err := c.uint16()
	if err != nil {
		return nil, err
	}
	hashedBase := c.base + c.pos
	hashedRaw, err := c.bytes(int(hashedLen))
	if err != nil {
		return nil, err
	}
	hashed, err := parseSubpackets(hashedRaw, hashedBase)
	if err != nil {
		return nil, err
	}

	sig := &SignaturePacket{
		Version:      version,
		SigType:      sigType,
		PubKeyAlgo:   PublicKeyAlgorithm(pkAlgo),
		HashAlgo:     HashAlgorithm(hashAlgo),
		Hashed:       hashed,
		HashedRegion: p.Body[:6+int(hashedLen)],
	}

	unhashedLen, err := c.uint16()
	if err != nil {
		return nil, err
	}
	unhashedBase := c.base + c.pos
	unhashedRaw, err := c.bytes(int(unhashedLen))
	if err != nil {
		return nil, err
	}
	sig.Unhashed, err = parseSubpackets(unhashedRaw, unhashedBase)
	if err != nil {
		return nil, err
	}

	left, err := c.bytes(2)
	if err != nil {
		return nil, err
	}
	copy(sig.Left16[:], left)

	switch sig.PubKeyAlgo {
	case PubKeyRSA, PubKeyRSASignOnly:
		sig.RSASig, err = c.mpi()
	case PubKeyDSA, PubKeyECDSA, PubKeyEdDSA:
		sig.R, err = c.mpi()
		if err == nil {
			sig.S, err = c.mpi()
		}
	default:
		return nil, formatErr(p.Offset, "unsupported signature algorithm %d", pkAlgo)
	}
	if err != nil {
		return nil, err
	}

	return sig, nil
}

// Issuer 返回签发者标识
//
// 优先取被哈希区的完整指纹（40 位十六进制），退而取短
// keyid（16 位，先被哈希区后非哈希区）。两者都缺返回空串。
func (s *SignaturePacket) Issuer() string {
	if b, ok := findSubpacket(s.Hashed, SubpacketIssuerFingerprint); ok && len(b) == 21 && b[0] == 4 {
		return hex.EncodeToString(b[1:])
	}
	if b, ok := findSubpacket(s.Hashed, SubpacketIssuerKeyID); ok && len(b) == 8 {
		return hex.EncodeToString(b)
	}
	if b, ok := findSubpacket(s.Unhashed, SubpacketIssuerKeyID); ok && len(b) == 8 {
		return hex.EncodeToString(b)
	}
	return ""
}

// CreationTime 返回被哈希区的签名创建时间
func (s *SignaturePacket) CreationTime() (time.Time, bool) {
	b, ok := findSubpacket(s.Hashed, SubpacketCreationTime)
	if !ok || len(b) != 4 {
		return time.Time{}, false
	}
	return time.Unix(int64(binary.BigEndian.Uint32(b)), 0).UTC(), true
}

// KeyExpiration 返回被哈希区的密钥有效期（相对创建时间的秒数）
//
// 仅在自签名上有意义。
func (s *SignaturePacket) KeyExpiration() (uint32, bool) {
	b, ok := findSubpacket(s.Hashed, SubpacketKeyExpiration)
	if !ok || len(b) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

// trailer 返回 v4 签名摘要的尾部字节
//
// 摘要输入为 数据 || HashedRegion || trailer，trailer 为
// 0x04 0xFF || uint32(len(HashedRegion))。
func (s *SignaturePacket) trailer() []byte {
	t := make([]byte, 6)
	t[0] = 0x04
	t[1] = 0xff
	binary.BigEndian.PutUint32(t[2:], uint32(len(s.HashedRegion)))
	return t
}
