// Package openpgp 实现 RFC 4880 包解析与签名验证
//
// 解析器把字节流解码为带类型标签的包序列，不依赖外部 GPG
// 程序即可验证 GPG 管理的密钥产生的签名。包体的字段级解码
// 延迟到使用方需要时进行（PublicKey / Signature 方法），只消费
// Signature 与相关公钥包时无需解码其余包。
//
// 所有长度与索引都经过边界检查：对抗性输入产生带字节偏移的
// *PacketFormatError，绝不触发 panic。
package openpgp

import (
	"encoding/binary"
	"io"

	"github.com/dep2p/go-sigkit/internal/util/logger"
)

var log = logger.Logger("openpgp")

// ============================================================================
//                              包类型
// ============================================================================

// Tag RFC 4880 包类型标签
type Tag uint8

const (
	// TagSignature 签名包 (tag 2)
	TagSignature Tag = 2
	// TagPublicKey 公钥包 (tag 6)
	TagPublicKey Tag = 6
	// TagTrust 信任包 (tag 12)
	TagTrust Tag = 12
	// TagUserID 用户标识包 (tag 13)
	TagUserID Tag = 13
	// TagPublicSubkey 子公钥包 (tag 14)
	TagPublicSubkey Tag = 14
)

// String 返回包类型名称
func (t Tag) String() string {
	switch t {
	case TagSignature:
		return "Signature"
	case TagPublicKey:
		return "PublicKey"
	case TagTrust:
		return "Trust"
	case TagUserID:
		return "UserID"
	case TagPublicSubkey:
		return "PublicSubkey"
	default:
		return "Unknown"
	}
}

// Packet 一个已切分但未字段解码的包
//
// 未知的 Tag 原样保留（前向兼容），不导致解析失败。
type Packet struct {
	// Tag 包类型标签，未知类型保留原始值
	Tag Tag

	// Offset 包头在输入流中的字节偏移
	Offset int

	// NewFormat 是否为新格式包头
	NewFormat bool

	// Partial 包体是否由 partial-body 长度段拼接而成
	Partial bool

	// Body 包体字节
	Body []byte
}

// ============================================================================
//                              PacketReader
// ============================================================================

// PacketReader 惰性、可重置的包序列读取器
type PacketReader struct {
	buf []byte
	pos int
}

// ParsePackets 从字节流构造包读取器
func ParsePackets(data []byte) *PacketReader {
	return &PacketReader{buf: data}
}

// Reset 回到流起点，可重新遍历
func (r *PacketReader) Reset() {
	r.pos = 0
}

// Next 读取下一个包
//
// 流结束返回 io.EOF；封装错误返回 *PacketFormatError。
func (r *PacketReader) Next() (*Packet, error) {
	if r.pos >= len(r.buf) {
		return nil, io.EOF
	}

	start := r.pos
	header := r.buf[r.pos]
	r.pos++

	// bit 7 必须置位
	if header&0x80 == 0 {
		return nil, formatErr(start, "invalid packet header 0x%02x: tag bit not set", header)
	}

	var p *Packet
	var err error
	if header&0x40 != 0 {
		p, err = r.readNewFormat(start, header)
	} else {
		p, err = r.readOldFormat(start, header)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("packet parsed", "tag", p.Tag, "offset", p.Offset, "len", len(p.Body))
	return p, nil
}

// All 读取剩余的全部包
func (r *PacketReader) All() ([]*Packet, error) {
	var packets []*Packet
	for {
		p, err := r.Next()
		if err == io.EOF {
			return packets, nil
		}
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}
}

// readOldFormat 旧格式包头：tag 占 bit 5-2，长度类型占 bit 1-0
func (r *PacketReader) readOldFormat(start int, header byte) (*Packet, error) {
	tag := Tag((header >> 2) & 0x0f)

	var bodyLen int
	switch header & 0x03 {
	case 0: // 1 字节长度
		b, err := r.takeByte(start)
		if err != nil {
			return nil, err
		}
		bodyLen = int(b)
	case 1: // 2 字节长度
		b, err := r.take(start, 2)
		if err != nil {
			return nil, err
		}
		bodyLen = int(binary.BigEndian.Uint16(b))
	case 2: // 4 字节长度
		b, err := r.take(start, 4)
		if err != nil {
			return nil, err
		}
		n := binary.BigEndian.Uint32(b)
		if n > uint32(len(r.buf)) {
			return nil, formatErr(start, "length %d exceeds remaining %d bytes", n, len(r.buf)-r.pos)
		}
		bodyLen = int(n)
	case 3: // 不定长：包体延伸到流末尾
		body := r.buf[r.pos:]
		r.pos = len(r.buf)
		return &Packet{Tag: tag, Offset: start, Body: body}, nil
	}

	body, err := r.take(start, bodyLen)
	if err != nil {
		return nil, err
	}
	return &Packet{Tag: tag, Offset: start, Body: body}, nil
}

// readNewFormat 新格式包头：tag 占 bit 5-0，长度为变长编码
func (r *PacketReader) readNewFormat(start int, header byte) (*Packet, error) {
	tag := Tag(header & 0x3f)

	bodyLen, partial, err := r.readNewLength(start)
	if err != nil {
		return nil, err
	}

	body, err := r.take(start, bodyLen)
	if err != nil {
		return nil, err
	}

	if !partial {
		return &Packet{Tag: tag, Offset: start, NewFormat: true, Body: body}, nil
	}

	// partial-body：继续读取后续长度段并拼接，直到非 partial 段
	assembled := append([]byte(nil), body...)
	for partial {
		var n int
		n, partial, err = r.readNewLength(start)
		if err != nil {
			return nil, err
		}
		chunk, err := r.take(start, n)
		if err != nil {
			return nil, err
		}
		assembled = append(assembled, chunk...)
	}

	return &Packet{Tag: tag, Offset: start, NewFormat: true, Partial: true, Body: assembled}, nil
}

// readNewLength 解码新格式长度段
//
// 返回 (长度, 是否 partial)。编码规则（RFC 4880 §4.2.2）：
//
//	o < 192          1 字节，长度 = o
//	192 ≤ o ≤ 223    2 字节，长度 = (o-192)<<8 + o2 + 192
//	224 ≤ o < 255    partial，长度 = 1 << (o & 0x1f)
//	o == 255         5 字节，长度 = 后续 4 字节大端
func (r *PacketReader) readNewLength(start int) (int, bool, error) {
	o, err := r.takeByte(start)
	if err != nil {
		return 0, false, err
	}

	switch {
	case o < 192:
		return int(o), false, nil
	case o <= 223:
		o2, err := r.takeByte(start)
		if err != nil {
			return 0, false, err
		}
		return (int(o)-192)<<8 + int(o2) + 192, false, nil
	case o < 255:
		return 1 << (o & 0x1f), true, nil
	default:
		b, err := r.take(start, 4)
		if err != nil {
			return 0, false, err
		}
		n := binary.BigEndian.Uint32(b)
		if n > uint32(len(r.buf)) {
			return 0, false, formatErr(start, "length %d exceeds remaining %d bytes", n, len(r.buf)-r.pos)
		}
		return int(n), false, nil
	}
}

// take 取 n 个字节，越界转为 PacketFormatError
func (r *PacketReader) take(headerOffset, n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, formatErr(headerOffset, "length %d exceeds remaining %d bytes", n, len(r.buf)-r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *PacketReader) takeByte(headerOffset int) (byte, error) {
	b, err := r.take(headerOffset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}
