package signer

import "errors"

// 分发相关错误
var (
	// ErrUnsupportedScheme 私钥引用的 scheme 前缀无已注册工厂
	ErrUnsupportedScheme = errors.New("unsupported private key reference scheme")

	// ErrUnsupportedAlgorithm Key 的 (keytype, scheme) 无已注册验签器
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// BackendError 外部后端（HSM、网络 KMS、GPG agent）的不透明故障
//
// 始终原样向调用方传播，本层不重试；重试与退避策略属于调用方。
type BackendError struct {
	// Backend 后端标识，如 "hsm"、"kms"、"gpg-agent"
	Backend string

	// Err 后端返回的原始错误
	Err error
}

func (e *BackendError) Error() string {
	return "backend " + e.Backend + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
