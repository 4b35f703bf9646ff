package keys

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HexBytes 以十六进制字符串形式持久化的字节串
type HexBytes []byte

// MarshalJSON 输出小写十六进制字符串
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// UnmarshalJSON 解析十六进制字符串
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*b = decoded
	return nil
}

// Signature 一次签名操作的结果
//
// 通过 KeyID 与唯一一把 Key 绑定。签名的有效性只能针对具体的
// (Key, data) 组合评估，不存在全局的"有效"状态。
type Signature struct {
	// KeyID 产生此签名的密钥标识
	KeyID string `json:"keyid"`

	// Sig 原始签名字节
	Sig HexBytes `json:"sig"`

	// Metadata 后端特定的附加字段
	//
	// OpenPGP 后端在此携带 other_headers（签名包被哈希区域的
	// 十六进制），其余后端留空。
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SignatureFromJSON 从持久化记录解析签名
func SignatureFromJSON(data []byte) (*Signature, error) {
	var s Signature
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if s.KeyID == "" {
		return nil, fmt.Errorf("%w: missing keyid", ErrInvalidSignature)
	}
	return &s, nil
}

// ToJSON 序列化为持久化记录
func (s *Signature) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}
