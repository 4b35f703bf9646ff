// Package signer 提供多后端签名/验签的能力接口与分发
//
// Signer 与 Verifier 是能力接口：调用方不依赖任何具体后端
// （软件密钥、硬件令牌、云 KMS、OpenPGP）。Registry 把私钥引用
// 的 scheme 前缀映射到 Signer 工厂，把 Key 的 (keytype, scheme)
// 映射到 Verifier 工厂。分发失败以显式错误报告，调用方不会
// 静默落到非预期的后端。
package signer

import (
	"context"
	"strings"

	"github.com/dep2p/go-sigkit/pkg/lib/keys"
)

// Signer 使用所持私钥对数据产生签名
//
// 外部后端（HSM、KMS）的实现可能在调用期间阻塞，超时控制
// 通过 ctx 传入。实现不得在内部重试。
type Signer interface {
	// Sign 对数据签名，返回与产生密钥的 keyid 绑定的签名
	Sign(ctx context.Context, data []byte) (*keys.Signature, error)
}

// Verifier 使用公钥检查签名
type Verifier interface {
	// Verify 检查签名是否对数据有效
	//
	// 仅在输入格式错误时返回 error；密码学意义上无效的签名
	// 返回 (false, nil)，不是错误。
	Verify(data []byte, sig *keys.Signature) (bool, error)
}

// ============================================================================
//                              私钥引用
// ============================================================================

// SplitRef 拆分私钥引用 "<scheme>:<opaque>"
//
// 无前缀的引用视为软件密钥文件路径，scheme 为 "file"。
// 引用的 opaque 部分不做 RFC 3986 解析，按后端约定原样传递。
func SplitRef(uri string) (scheme, rest string) {
	if i := strings.Index(uri, ":"); i >= 0 {
		return uri[:i], uri[i+1:]
	}
	return "file", uri
}
