package sigkit

import (
	"context"
	"sync"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/openpgp"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
	"github.com/dep2p/go-sigkit/pkg/lib/softkey"
)

// ============================================================================
//                              默认注册表
// ============================================================================

var (
	defaultRegistry     *signer.Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry 返回含全部内置后端的注册表
//
// 内置注册项：
//   - "file:" 签名器（磁盘密钥文件，裸引用也落到这里）
//   - 软件后端的全部 (keytype, scheme) 验签器
//   - "other"/"pgp+" 前缀的 OpenPGP 验签器
//
// HSM、KMS、gpg-agent 后端需要外部协作方实例，调用方在启动
// 阶段用 Register* 自行挂接。首次调用后注册表即进入只读使用，
// 后续注册必须在任何并发验签开始前完成。
func DefaultRegistry() *signer.Registry {
	defaultRegistryOnce.Do(func() {
		r := signer.NewRegistry()

		r.RegisterSigner("file", softkey.SignerFactory(nil))

		for _, reg := range []struct {
			keytype keys.KeyType
			scheme  string
		}{
			{keys.KeyTypeRSA, "rsassa-pss-sha256"},
			{keys.KeyTypeRSA, "rsassa-pss-sha384"},
			{keys.KeyTypeRSA, "rsassa-pss-sha512"},
			{keys.KeyTypeRSA, "rsa-pkcs1v15-sha256"},
			{keys.KeyTypeECDSA, "ecdsa-sha2-nistp256"},
			{keys.KeyTypeECDSA, "ecdsa-sha2-nistp384"},
			{keys.KeyTypeECDSA, "ecdsa-secp256k1-sha256"},
			{keys.KeyTypeEd25519, "ed25519"},
		} {
			r.RegisterVerifier(reg.keytype, reg.scheme, softkey.VerifierFactory)
		}

		r.RegisterVerifier(keys.KeyTypeOther, "pgp+", openpgp.VerifierFactory)

		defaultRegistry = r
	})
	return defaultRegistry
}

// ============================================================================
//                              便捷入口
// ============================================================================

// GenerateKey 生成指定 scheme 的软件密钥对
func GenerateKey(scheme string) (*keys.Key, error) {
	return softkey.GenerateKey(scheme)
}

// Sign 按私钥引用解析签名器并对数据签名
//
// ref 形如 "file:/path/to/key"；无 scheme 前缀的引用按磁盘
// 密钥文件处理。
func Sign(ctx context.Context, ref string, data []byte) (*keys.Signature, error) {
	s, err := DefaultRegistry().GetSigner(ref)
	if err != nil {
		return nil, err
	}
	return s.Sign(ctx, data)
}

// Verify 按 Key 解析验签器并检查签名
//
// 签名无效返回 (false, nil)，仅输入畸形或后端不支持返回错误。
func Verify(key *keys.Key, data []byte, sig *keys.Signature) (bool, error) {
	v, err := DefaultRegistry().GetVerifier(key)
	if err != nil {
		return false, err
	}
	return v.Verify(data, sig)
}
