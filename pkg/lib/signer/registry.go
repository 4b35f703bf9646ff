package signer

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-sigkit/internal/util/logger"
	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

var log = logger.Logger("signer")

// SignerFactory 由私钥引用构造 Signer
//
// 收到完整引用（含 scheme 前缀），用 SplitRef 拆分。
type SignerFactory func(ref string) (Signer, error)

// VerifierFactory 由 Key 构造 Verifier
type VerifierFactory func(key *keys.Key) (Verifier, error)

// ============================================================================
//                              Registry
// ============================================================================

// Registry 后端注册表
//
// 注册是启动阶段的一次性配置：所有 Register* 调用必须在任何
// 并发的签名/验签开始之前完成。初始化完成后注册表只读，
// 可被多 goroutine 并发查询，无需加锁。
type Registry struct {
	signers   map[string]SignerFactory
	verifiers map[string]VerifierFactory
}

// NewRegistry 创建空的注册表
//
// 含全部内置后端的注册表见根包的 DefaultRegistry。
func NewRegistry() *Registry {
	return &Registry{
		signers:   make(map[string]SignerFactory),
		verifiers: make(map[string]VerifierFactory),
	}
}

// RegisterSigner 注册 scheme 前缀对应的 Signer 工厂
//
// 重复注册同一前缀以后者为准。
func (r *Registry) RegisterSigner(schemePrefix string, factory SignerFactory) {
	r.signers[schemePrefix] = factory
}

// RegisterVerifier 注册 (keytype, scheme) 对应的 Verifier 工厂
//
// scheme 以 "+" 结尾时按前缀匹配（如 "pgp+" 覆盖 "pgp+eddsa"）。
func (r *Registry) RegisterVerifier(keytype keys.KeyType, scheme string, factory VerifierFactory) {
	r.verifiers[verifierKey(keytype, scheme)] = factory
}

// GetSigner 按私钥引用的 scheme 前缀解析 Signer
//
// 无已注册工厂时返回 ErrUnsupportedScheme。
func (r *Registry) GetSigner(privateKeyRef string) (Signer, error) {
	scheme, _ := SplitRef(privateKeyRef)

	factory, ok := r.signers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no signer for scheme %q", ErrUnsupportedScheme, scheme)
	}

	log.Debug("resolving signer", "scheme", scheme)
	return factory(privateKeyRef)
}

// GetVerifier 按 Key 的 (keytype, scheme) 解析 Verifier
//
// 未知组合返回 ErrUnsupportedAlgorithm。
func (r *Registry) GetVerifier(key *keys.Key) (Verifier, error) {
	if factory, ok := r.verifiers[verifierKey(key.KeyType, key.Scheme)]; ok {
		return factory(key)
	}

	// 前缀注册项，如 other/pgp+
	for k, factory := range r.verifiers {
		kt, scheme, ok := splitVerifierKey(k)
		if !ok || kt != key.KeyType {
			continue
		}
		if strings.HasSuffix(scheme, "+") && strings.HasPrefix(key.Scheme, scheme) {
			return factory(key)
		}
	}

	return nil, fmt.Errorf("%w: no verifier for keytype %q scheme %q",
		ErrUnsupportedAlgorithm, key.KeyType, key.Scheme)
}

func verifierKey(keytype keys.KeyType, scheme string) string {
	return string(keytype) + "\x00" + scheme
}

func splitVerifierKey(k string) (keys.KeyType, string, bool) {
	i := strings.IndexByte(k, '\x00')
	if i < 0 {
		return "", "", false
	}
	return keys.KeyType(k[:i]), k[i+1:], true
}
