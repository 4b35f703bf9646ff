package openpgp

import "encoding/binary"

// 签名子包类型（RFC 4880 §5.2.3.1）
const (
	// SubpacketCreationTime 签名创建时间 (2)
	SubpacketCreationTime uint8 = 2
	// SubpacketKeyExpiration 密钥有效期，相对创建时间的秒数 (9)
	SubpacketKeyExpiration uint8 = 9
	// SubpacketIssuerKeyID 签发者短 keyid，8 字节 (16)
	SubpacketIssuerKeyID uint8 = 16
	// SubpacketIssuerFingerprint 签发者完整指纹 (33)
	SubpacketIssuerFingerprint uint8 = 33
)

// Subpacket 签名包内的一个子包
type Subpacket struct {
	// Type 子包类型，critical 位已剥离
	Type uint8

	// Critical 接收方不认识此类型时必须拒绝整个签名
	Critical bool

	// Body 子包体
	Body []byte
}

// parseSubpackets 解析子包区
//
// base 为 data 在原始输入中的偏移，用于错误定位。子包长度
// 编码与包长度类似但自成一套：1、2 或 5 字节，无 partial。
// 长度计入类型字节。
func parseSubpackets(data []byte, base int) ([]Subpacket, error) {
	var subpackets []Subpacket
	pos := 0

	for pos < len(data) {
		start := pos

		o := data[pos]
		pos++

		var length int
		switch {
		case o < 192:
			length = int(o)
		case o < 255:
			if pos >= len(data) {
				return nil, formatErr(base+start, "truncated subpacket length")
			}
			length = (int(o)-192)<<8 + int(data[pos]) + 192
			pos++
		default:
			if pos+4 > len(data) {
				return nil, formatErr(base+start, "truncated subpacket length")
			}
			n := binary.BigEndian.Uint32(data[pos : pos+4])
			if n > uint32(len(data)) {
				return nil, formatErr(base+start, "subpacket length %d exceeds region", n)
			}
			length = int(n)
			pos += 4
		}

		// 长度至少覆盖类型字节
		if length < 1 || pos+length > len(data) {
			return nil, formatErr(base+start, "subpacket length %d exceeds remaining %d bytes", length, len(data)-pos)
		}

		typeOctet := data[pos]
		subpackets = append(subpackets, Subpacket{
			Type:     typeOctet & 0x7f,
			Critical: typeOctet&0x80 != 0,
			Body:     data[pos+1 : pos+length],
		})
		pos += length
	}

	return subpackets, nil
}

// findSubpacket 按类型查找子包，先到先得
func findSubpacket(subpackets []Subpacket, t uint8) ([]byte, bool) {
	for _, sp := range subpackets {
		if sp.Type == t {
			return sp.Body, true
		}
	}
	return nil, false
}
