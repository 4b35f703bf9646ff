package openpgp

import (
	"errors"
	"fmt"
)

// PacketFormatError 字节流不符合 RFC 4880 封装规则
//
// Offset 指向违规包头（或字段）在输入中的字节偏移。对抗性输入
// 一律归一为此错误，解析过程不会 panic。
type PacketFormatError struct {
	// Offset 出错位置的字节偏移
	Offset int

	// Reason 失败原因
	Reason string
}

func (e *PacketFormatError) Error() string {
	return fmt.Sprintf("openpgp: malformed packet at offset %d: %s", e.Offset, e.Reason)
}

// formatErr 构造 PacketFormatError
func formatErr(offset int, format string, args ...any) error {
	return &PacketFormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// 验签相关错误
var (
	// ErrKeyNotFound 签名的 issuer 与任何候选密钥都不匹配
	ErrKeyNotFound = errors.New("no candidate key matches signature issuer")

	// ErrKeyExpired 选中的验证密钥已过有效期
	ErrKeyExpired = errors.New("verification key has expired")

	// ErrNoSignaturePacket 字节流中没有签名包
	ErrNoSignaturePacket = errors.New("no signature packet in stream")

	// ErrNoPublicKeyPacket 字节流中没有公钥包
	ErrNoPublicKeyPacket = errors.New("no public key packet in stream")

	// ErrAlgorithmRejected 算法不在验签策略白名单内
	ErrAlgorithmRejected = errors.New("algorithm rejected by policy")
)

// armor 相关错误
var (
	// ErrInvalidArmor ASCII armor 结构错误
	ErrInvalidArmor = errors.New("invalid ASCII armor")

	// ErrArmorChecksum CRC-24 校验失败
	ErrArmorChecksum = errors.New("armor checksum mismatch")
)
