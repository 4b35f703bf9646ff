package cjson

import (
	"encoding/hex"

	sha256 "github.com/minio/sha256-simd"
)

// Digest 返回规范化编码的 SHA-256 摘要
func Digest(v any) ([sha256.Size]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// DigestHex 返回规范化编码的 SHA-256 摘要的小写十六进制表示
//
// keyid 即公钥部分经此函数得到的值。
func DigestHex(v any) (string, error) {
	sum, err := Digest(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
