// Package hsm 提供 PKCS#11 硬件令牌的签名适配
//
// 与令牌的实际通信由 Token 协作方承担（外部实现），本包负责
// scheme 到机制的映射、摘要计算、口令回调和签名格式归一。
// 令牌故障以 signer.BackendError 原样上抛，不在本层重试。
package hsm

import (
	"context"
	"crypto"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/dep2p/go-sigkit/internal/util/logger"
	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

var log = logger.Logger("hsm")

// Mechanism PKCS#11 签名机制标识
type Mechanism string

const (
	// MechanismECDSASHA256 CKM_ECDSA_SHA256
	MechanismECDSASHA256 Mechanism = "ECDSA_SHA256"
	// MechanismECDSASHA384 CKM_ECDSA_SHA384
	MechanismECDSASHA384 Mechanism = "ECDSA_SHA384"
)

// schemeMechanisms 受支持的 scheme 与机制、摘要的对应
var schemeMechanisms = map[string]struct {
	mechanism Mechanism
	hash      crypto.Hash
	curveSize int // r/s 标量字节数
}{
	"ecdsa-sha2-nistp256": {MechanismECDSASHA256, crypto.SHA256, 32},
	"ecdsa-sha2-nistp384": {MechanismECDSASHA384, crypto.SHA384, 48},
}

// PinProvider 按需提供令牌 PIN
//
// 每次签名调用时查询，PIN 不在本层保存。
type PinProvider func() (string, error)

// Token 与 PKCS#11 令牌通信的协作方接口
//
// 实现通常封装一个 PKCS#11 会话，调用期间可能阻塞。
type Token interface {
	// Login 使用 PIN 打开会话
	Login(ctx context.Context, pin string) error

	// Sign 以指定机制对摘要签名，返回原始 r||s 字节
	Sign(ctx context.Context, handle string, mechanism Mechanism, digest []byte) ([]byte, error)
}

// ============================================================================
//                              Signer
// ============================================================================

// Signer 硬件令牌签名器
type Signer struct {
	token  Token
	handle string
	key    *keys.Key
	pin    PinProvider
}

// NewSigner 构造硬件令牌签名器
//
// key 为令牌上私钥对应的公钥记录，决定 scheme 与产出签名的
// keyid 绑定。
func NewSigner(token Token, handle string, key *keys.Key, pin PinProvider) (*Signer, error) {
	if _, ok := schemeMechanisms[key.Scheme]; !ok {
		return nil, fmt.Errorf("%w: scheme %q has no PKCS#11 mechanism",
			signer.ErrUnsupportedAlgorithm, key.Scheme)
	}
	return &Signer{token: token, handle: handle, key: key, pin: pin}, nil
}

// Sign 对数据签名
//
// 令牌返回的 r||s 原始字节转为 DER 编码，与软件后端产出一致。
func (s *Signer) Sign(ctx context.Context, data []byte) (*keys.Signature, error) {
	m := schemeMechanisms[s.key.Scheme]

	requestID := uuid.NewString()
	log.Debug("hsm sign", "request_id", requestID, "handle", s.handle, "mechanism", m.mechanism)

	if s.pin != nil {
		pin, err := s.pin()
		if err != nil {
			return nil, &signer.BackendError{Backend: "hsm", Err: err}
		}
		if err := s.token.Login(ctx, pin); err != nil {
			return nil, &signer.BackendError{Backend: "hsm", Err: err}
		}
	}

	hasher := m.hash.New()
	hasher.Write(data)

	raw, err := s.token.Sign(ctx, s.handle, m.mechanism, hasher.Sum(nil))
	if err != nil {
		log.Warn("hsm sign failed", "request_id", requestID, "err", err)
		return nil, &signer.BackendError{Backend: "hsm", Err: err}
	}

	der, err := rawToDER(raw, m.curveSize)
	if err != nil {
		return nil, &signer.BackendError{Backend: "hsm", Err: err}
	}

	return &keys.Signature{KeyID: s.key.KeyID, Sig: der}, nil
}

// Public 返回签名器对应的公钥记录
func (s *Signer) Public() *keys.Key {
	return s.key.Public()
}

// SignerFactory 返回处理 "hsm:"/"pkcs11:" 引用的工厂
//
// 引用的 opaque 部分为令牌上的密钥句柄，如 "hsm:2"。
func SignerFactory(token Token, key *keys.Key, pin PinProvider) signer.SignerFactory {
	return func(ref string) (signer.Signer, error) {
		_, handle := signer.SplitRef(ref)
		if handle == "" {
			return nil, fmt.Errorf("%w: empty key handle in %q", signer.ErrUnsupportedScheme, ref)
		}
		return NewSigner(token, handle, key, pin)
	}
}

// rawToDER 将 PKCS#11 的 r||s 签名转为 ASN.1 DER 编码
func rawToDER(raw []byte, scalarSize int) ([]byte, error) {
	if len(raw) != 2*scalarSize {
		return nil, fmt.Errorf("unexpected signature length %d, want %d", len(raw), 2*scalarSize)
	}
	return asn1.Marshal(struct {
		R, S *big.Int
	}{
		R: new(big.Int).SetBytes(raw[:scalarSize]),
		S: new(big.Int).SetBytes(raw[scalarSize:]),
	})
}
