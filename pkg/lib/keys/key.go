// Package keys 提供后端无关的密钥与签名模型
//
// Key 和 Signature 是不可变的值对象，由解析持久化的元数据或签名
// 操作产生。Key 的 keyid 由公钥部分的规范化摘要派生，私钥部分
// 和 keyid 本身不参与计算，因此同一公钥材料在任何实现下都能
// 复现出相同的 keyid。
package keys

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dep2p/go-sigkit/pkg/lib/cjson"
)

// ============================================================================
//                              密钥类型定义
// ============================================================================

// KeyType 密钥类型
//
// 与持久化格式中的 keytype 字段一致，取值为小写字符串。
type KeyType string

const (
	// KeyTypeRSA RSA 密钥
	KeyTypeRSA KeyType = "rsa"
	// KeyTypeECDSA ECDSA 密钥（含 NIST 曲线与 secp256k1）
	KeyTypeECDSA KeyType = "ecdsa"
	// KeyTypeEd25519 Ed25519 密钥（默认推荐）
	KeyTypeEd25519 KeyType = "ed25519"
	// KeyTypeSphincs SPHINCS+ 密钥（后量子，暂无内置后端）
	KeyTypeSphincs KeyType = "sphincs"
	// KeyTypeOther 其他密钥（如 OpenPGP 密钥束）
	KeyTypeOther KeyType = "other"
)

// KeyTypes 已知的密钥类型列表
var KeyTypes = []KeyType{
	KeyTypeRSA,
	KeyTypeECDSA,
	KeyTypeEd25519,
	KeyTypeSphincs,
	KeyTypeOther,
}

// keyTypeSchemes 各密钥类型允许的 scheme
//
// 以 "+" 结尾的条目为前缀匹配（如 "pgp+" 匹配 "pgp+eddsa"）。
// 该表是显式白名单：scheme 的演进通过改表完成，不改判定逻辑。
var keyTypeSchemes = map[KeyType][]string{
	KeyTypeRSA: {
		"rsassa-pss-sha256",
		"rsassa-pss-sha384",
		"rsassa-pss-sha512",
		"rsa-pkcs1v15-sha256",
	},
	KeyTypeECDSA: {
		"ecdsa-sha2-nistp256",
		"ecdsa-sha2-nistp384",
		"ecdsa-secp256k1-sha256",
	},
	KeyTypeEd25519: {
		"ed25519",
	},
	KeyTypeSphincs: {
		"sphincs-shake-128s",
	},
	KeyTypeOther: {
		"pgp+",
	},
}

// ValidateScheme 检查 keytype 与 scheme 的组合是否合法
func ValidateScheme(keytype KeyType, scheme string) error {
	schemes, ok := keyTypeSchemes[keytype]
	if !ok {
		return fmt.Errorf("%w: keytype %q", ErrBadKeyType, keytype)
	}
	for _, s := range schemes {
		if s == scheme {
			return nil
		}
		if strings.HasSuffix(s, "+") && strings.HasPrefix(scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("%w: scheme %q for keytype %q", ErrSchemeMismatch, scheme, keytype)
}

// ============================================================================
//                              Key
// ============================================================================

// KeyVal 密钥材料
//
// Public 为 PEM 或十六进制编码的公钥；Private 可选，仅签名方持有。
type KeyVal struct {
	Public  string `json:"public"`
	Private string `json:"private,omitempty"`
}

// Key 后端无关的密钥表示
//
// 仅含 Public 的 Key 只能验签；含 Private 的 Key 还可签名。
// 构造后不应修改任何字段。
type Key struct {
	KeyID   string  `json:"keyid"`
	KeyType KeyType `json:"keytype"`
	Scheme  string  `json:"scheme"`
	KeyVal  KeyVal  `json:"keyval"`
}

// ComputeID 重新计算 keyid
//
// keyid = SHA256(规范化({keytype, scheme, keyval:{public}}))，
// 私钥部分与已存储的 keyid 均不参与，保证确定性。
func (k *Key) ComputeID() (string, error) {
	return cjson.DigestHex(map[string]any{
		"keytype": string(k.KeyType),
		"scheme":  k.Scheme,
		"keyval": map[string]any{
			"public": k.KeyVal.Public,
		},
	})
}

// Validate 检查 Key 的结构一致性
//
// 验证 keytype/scheme 组合合法、公钥非空，且存储的 keyid
// 与公钥材料重新计算的结果一致。"pgp+" scheme 例外：其 keyid
// 是 OpenPGP 主密钥指纹，由传输格式字节派生，不做摘要比对。
func (k *Key) Validate() error {
	if err := ValidateScheme(k.KeyType, k.Scheme); err != nil {
		return err
	}
	if k.KeyVal.Public == "" {
		return ErrNoPublicKey
	}
	if strings.HasPrefix(k.Scheme, "pgp+") {
		if len(k.KeyID) != 40 {
			return fmt.Errorf("%w: %q is not a v4 fingerprint", ErrKeyIDMismatch, k.KeyID)
		}
		return nil
	}

	id, err := k.ComputeID()
	if err != nil {
		return err
	}
	if k.KeyID != id {
		return fmt.Errorf("%w: stored %q, computed %q", ErrKeyIDMismatch, k.KeyID, id)
	}
	return nil
}

// CanSign 报告此 Key 是否持有私钥材料
func (k *Key) CanSign() bool {
	return k.KeyVal.Private != ""
}

// Public 返回去除私钥材料的副本
//
// 用于安全地导出或持久化公钥记录。
func (k *Key) Public() *Key {
	return &Key{
		KeyID:   k.KeyID,
		KeyType: k.KeyType,
		Scheme:  k.Scheme,
		KeyVal:  KeyVal{Public: k.KeyVal.Public},
	}
}

// ============================================================================
//                              构造与序列化
// ============================================================================

// New 构造 Key 并计算其 keyid
func New(keytype KeyType, scheme string, val KeyVal) (*Key, error) {
	if err := ValidateScheme(keytype, scheme); err != nil {
		return nil, err
	}
	if val.Public == "" {
		return nil, ErrNoPublicKey
	}

	k := &Key{KeyType: keytype, Scheme: scheme, KeyVal: val}
	id, err := k.ComputeID()
	if err != nil {
		return nil, err
	}
	k.KeyID = id
	return k, nil
}

// FromJSON 从持久化记录解析 Key
//
// 记录格式:
//
//	{"keyid": "<hex>", "keytype": "<type>", "scheme": "<scheme>",
//	 "keyval": {"public": "<PEM-or-hex>", "private": "<PEM-or-hex>"}}
func FromJSON(data []byte) (*Key, error) {
	var k Key
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return &k, nil
}

// ToJSON 序列化为持久化记录
func (k *Key) ToJSON() ([]byte, error) {
	return json.Marshal(k)
}
