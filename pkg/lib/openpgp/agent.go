package openpgp

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

// Agent 与外部 GPG 密钥管理进程通信的协作方接口
//
// 私钥留在 agent 一侧，本层只见公钥与产出的签名包。实现通常
// 封装 gpg 子进程或 assuan 套接字，调用期间可能阻塞。
type Agent interface {
	// Sign 以标识指定的私钥对数据做分离签名，返回二进制签名包流
	Sign(ctx context.Context, keyIdentifier string, data []byte) ([]byte, error)

	// Export 导出标识对应的传输格式公钥（二进制或 armor 文本）
	Export(ctx context.Context, keyIdentifier string) ([]byte, error)
}

// ============================================================================
//                              AgentSigner
// ============================================================================

// AgentSigner 经外部 GPG agent 签名的 signer.Signer
//
// 产出签名的 KeyID 固定为主密钥指纹，即便 agent 实际用子密钥
// 签名：签发者信息已编码在签名包内，验签时按 issuer 子包在
// bundle 中重新选键。
type AgentSigner struct {
	agent         Agent
	keyIdentifier string
	bundle        *Bundle
}

// NewAgentSigner 构造 agent 签名器
//
// 构造时导出一次公钥 bundle，后续签名不再访问 agent 的公钥面。
func NewAgentSigner(ctx context.Context, agent Agent, keyIdentifier string) (*AgentSigner, error) {
	exported, err := agent.Export(ctx, keyIdentifier)
	if err != nil {
		return nil, &signer.BackendError{Backend: "gpg-agent", Err: err}
	}

	var bundle *Bundle
	if strings.HasPrefix(strings.TrimSpace(string(exported)), "-----BEGIN PGP ") {
		bundle, err = ParseBundleArmored(string(exported))
	} else {
		bundle, err = ParseBundle(exported)
	}
	if err != nil {
		return nil, err
	}
	return &AgentSigner{agent: agent, keyIdentifier: keyIdentifier, bundle: bundle}, nil
}

// Sign 对数据签名
//
// Sig 为 agent 返回的完整二进制签名包，Metadata 的
// "other_headers" 为签名包被哈希区的十六进制，供不解包的
// 调用方重建摘要。
func (s *AgentSigner) Sign(ctx context.Context, data []byte) (*keys.Signature, error) {
	requestID := uuid.NewString()
	log.Debug("agent sign", "request_id", requestID, "key", s.keyIdentifier)

	raw, err := s.agent.Sign(ctx, s.keyIdentifier, data)
	if err != nil {
		log.Warn("agent sign failed", "request_id", requestID, "err", err)
		return nil, &signer.BackendError{Backend: "gpg-agent", Err: err}
	}

	packet, err := ParsePackets(raw).Next()
	if err != nil {
		return nil, err
	}
	sig, err := ParseSignature(packet)
	if err != nil {
		return nil, err
	}

	// agent 可能用子密钥签名，确认签发者确属本 bundle
	if issuer := sig.Issuer(); issuer != "" {
		if _, err := s.bundle.FindKey(issuer); err != nil {
			return nil, err
		}
	}

	return &keys.Signature{
		KeyID: s.bundle.Primary.Key.Fingerprint,
		Sig:   raw,
		Metadata: map[string]string{
			"other_headers": hex.EncodeToString(sig.HashedRegion),
		},
	}, nil
}

// Public 返回签名器对应的公钥记录
func (s *AgentSigner) Public() *keys.Key {
	return KeyFromBundle(s.bundle)
}

// SignerFactory 返回处理 "gpg:" 引用的工厂
//
// 引用的 opaque 部分为 gpg 理解的密钥标识（指纹、keyid 或
// 用户标识），如 "gpg:A0B1..."。
func SignerFactory(agent Agent) signer.SignerFactory {
	return func(ref string) (signer.Signer, error) {
		_, identifier := signer.SplitRef(ref)
		return NewAgentSigner(context.Background(), agent, identifier)
	}
}
