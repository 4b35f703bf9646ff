// Package kms 提供云密钥管理服务的签名适配
//
// 网络客户端由 Client 协作方承担（外部实现），本包负责资源路径
// 解析、摘要计算和错误归一。KMS 故障以 signer.BackendError 原样
// 上抛；重试与退避属于调用方，本层不做。
package kms

import (
	"context"
	"crypto"
	"fmt"

	"github.com/google/uuid"

	"github.com/dep2p/go-sigkit/internal/util/logger"
	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

var log = logger.Logger("kms")

// Client 与云 KMS 通信的协作方接口
//
// 调用期间可能因网络阻塞，超时由 ctx 控制。
type Client interface {
	// Sign 对摘要（ed25519 为原始数据）签名，返回原始签名字节
	Sign(ctx context.Context, resource string, digest []byte) ([]byte, error)

	// PublicKey 取回资源对应的公钥记录
	PublicKey(ctx context.Context, resource string) (*keys.Key, error)
}

// schemeHashes KMS 后端各 scheme 的预哈希算法
//
// ed25519 不预哈希，由服务端对原始数据签名。
var schemeHashes = map[string]crypto.Hash{
	"rsassa-pss-sha256":   crypto.SHA256,
	"rsassa-pss-sha384":   crypto.SHA384,
	"rsassa-pss-sha512":   crypto.SHA512,
	"rsa-pkcs1v15-sha256": crypto.SHA256,
	"ecdsa-sha2-nistp256": crypto.SHA256,
	"ecdsa-sha2-nistp384": crypto.SHA384,
	"ed25519":             0,
}

// ============================================================================
//                              Signer
// ============================================================================

// Signer 云 KMS 签名器
type Signer struct {
	client   Client
	resource string
	key      *keys.Key
}

// NewSigner 构造 KMS 签名器
//
// key 为 KMS 侧私钥对应的公钥记录。
func NewSigner(client Client, resource string, key *keys.Key) (*Signer, error) {
	if _, ok := schemeHashes[key.Scheme]; !ok {
		return nil, fmt.Errorf("%w: scheme %q not signable via KMS",
			signer.ErrUnsupportedAlgorithm, key.Scheme)
	}
	return &Signer{client: client, resource: resource, key: key}, nil
}

// SignerFromResource 构造 KMS 签名器并从服务端取回公钥
func SignerFromResource(ctx context.Context, client Client, resource string) (*Signer, error) {
	key, err := client.PublicKey(ctx, resource)
	if err != nil {
		return nil, &signer.BackendError{Backend: "kms", Err: err}
	}
	return NewSigner(client, resource, key)
}

// Sign 对数据签名
func (s *Signer) Sign(ctx context.Context, data []byte) (*keys.Signature, error) {
	requestID := uuid.NewString()
	log.Debug("kms sign", "request_id", requestID, "resource", s.resource, "scheme", s.key.Scheme)

	payload := data
	if h := schemeHashes[s.key.Scheme]; h != 0 {
		hasher := h.New()
		hasher.Write(data)
		payload = hasher.Sum(nil)
	}

	raw, err := s.client.Sign(ctx, s.resource, payload)
	if err != nil {
		log.Warn("kms sign failed", "request_id", requestID, "err", err)
		return nil, &signer.BackendError{Backend: "kms", Err: err}
	}

	return &keys.Signature{KeyID: s.key.KeyID, Sig: raw}, nil
}

// Public 返回签名器对应的公钥记录
func (s *Signer) Public() *keys.Key {
	return s.key.Public()
}

// SignerFactory 返回处理 "kms:" 引用的工厂
//
// 引用的 opaque 部分为服务商的资源路径，如
// "kms:projects/p/locations/l/keyRings/r/cryptoKeys/k/versions/1"。
// 公钥在工厂解析时取回一次。
func SignerFactory(client Client) signer.SignerFactory {
	return func(ref string) (signer.Signer, error) {
		_, resource := signer.SplitRef(ref)
		if resource == "" {
			return nil, fmt.Errorf("%w: empty resource path in %q", signer.ErrUnsupportedScheme, ref)
		}
		return SignerFromResource(context.Background(), client, resource)
	}
}
