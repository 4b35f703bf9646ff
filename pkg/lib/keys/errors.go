package keys

import "errors"

// 密钥相关错误
var (
	// ErrBadKeyType 未知的密钥类型
	ErrBadKeyType = errors.New("invalid or unsupported key type")

	// ErrSchemeMismatch scheme 与密钥类型不匹配
	ErrSchemeMismatch = errors.New("scheme not allowed for key type")

	// ErrNoPublicKey 缺少公钥材料
	ErrNoPublicKey = errors.New("missing public key material")

	// ErrNoPrivateKey 缺少私钥材料
	ErrNoPrivateKey = errors.New("missing private key material")

	// ErrInvalidKey 密钥记录格式错误
	ErrInvalidKey = errors.New("invalid key record")

	// ErrKeyIDMismatch 存储的 keyid 与重新计算的不一致
	ErrKeyIDMismatch = errors.New("keyid does not match public key material")
)

// 签名相关错误
var (
	// ErrInvalidSignature 签名记录格式错误
	ErrInvalidSignature = errors.New("invalid signature record")
)
