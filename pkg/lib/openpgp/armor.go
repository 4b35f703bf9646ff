package openpgp

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ============================================================================
//                              ASCII Armor
// ============================================================================

// crc24 RFC 4880 §6.1 的 CRC-24 校验
func crc24(data []byte) uint32 {
	crc := uint32(0xB704CE)
	for _, b := range data {
		crc ^= uint32(b) << 16
		for i := 0; i < 8; i++ {
			crc <<= 1
			if crc&0x1000000 != 0 {
				crc ^= 0x1864CFB
			}
		}
	}
	return crc & 0xFFFFFF
}

// Dearmor 解除 ASCII armor，返回二进制包流与块类型
//
// 接受任意 "-----BEGIN PGP <TYPE>-----" 块。头部键值行与其后的
// 空行被跳过；"=XXXX" 行为 CRC-24 校验，存在则必须匹配
// （ErrArmorChecksum），缺失容忍。结构错误返回 ErrInvalidArmor。
func Dearmor(text string) (data []byte, blockType string, err error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	// 定位 BEGIN 行
	begin := -1
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-----BEGIN PGP ") && strings.HasSuffix(line, "-----") {
			blockType = strings.TrimSuffix(strings.TrimPrefix(line, "-----BEGIN PGP "), "-----")
			begin = i
			break
		}
	}
	if begin < 0 {
		return nil, "", fmt.Errorf("%w: no BEGIN line", ErrInvalidArmor)
	}

	// 跳过头部键值行，空行之后进入 base64 体；部分导出
	// 不带头部，直接以数据行开始
	pos := begin + 1
	for pos < len(lines) {
		line := strings.TrimSpace(lines[pos])
		if line == "" {
			pos++
			break
		}
		if !strings.Contains(line, ": ") {
			break
		}
		pos++
	}

	var b64 strings.Builder
	var checksum string
	done := false
	for ; pos < len(lines); pos++ {
		line := strings.TrimSpace(lines[pos])
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "-----END PGP "):
			if strings.TrimSuffix(strings.TrimPrefix(line, "-----END PGP "), "-----") != blockType {
				return nil, "", fmt.Errorf("%w: END block type mismatch", ErrInvalidArmor)
			}
			done = true
		case strings.HasPrefix(line, "="):
			checksum = line[1:]
		default:
			b64.WriteString(line)
		}
		if done {
			break
		}
	}
	if !done {
		return nil, "", fmt.Errorf("%w: no END line", ErrInvalidArmor)
	}

	data, err = base64.StdEncoding.DecodeString(b64.String())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidArmor, err)
	}

	if checksum != "" {
		want, err := base64.StdEncoding.DecodeString(checksum)
		if err != nil || len(want) != 3 {
			return nil, "", fmt.Errorf("%w: bad checksum line", ErrInvalidArmor)
		}
		got := crc24(data)
		if want[0] != byte(got>>16) || want[1] != byte(got>>8) || want[2] != byte(got) {
			return nil, "", ErrArmorChecksum
		}
	}

	return data, blockType, nil
}

// Armor 生成 ASCII armor 文本
//
// blockType 为 "PUBLIC KEY BLOCK"、"SIGNATURE" 等。
func Armor(blockType string, data []byte) string {
	var sb strings.Builder
	sb.WriteString("-----BEGIN PGP ")
	sb.WriteString(blockType)
	sb.WriteString("-----\n\n")

	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 64 {
		sb.WriteString(encoded[:64])
		sb.WriteByte('\n')
		encoded = encoded[64:]
	}
	sb.WriteString(encoded)
	sb.WriteByte('\n')

	crc := crc24(data)
	sb.WriteByte('=')
	sb.WriteString(base64.StdEncoding.EncodeToString([]byte{
		byte(crc >> 16), byte(crc >> 8), byte(crc),
	}))
	sb.WriteByte('\n')

	sb.WriteString("-----END PGP ")
	sb.WriteString(blockType)
	sb.WriteString("-----\n")
	return sb.String()
}
