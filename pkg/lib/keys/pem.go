package keys

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PEM 块类型
const (
	pemBlockPublic  = "PUBLIC KEY"
	pemBlockPrivate = "PRIVATE KEY"
)

// EncodePublicKeyPEM 将公钥编码为 PKIX/PEM 文本
func EncodePublicKeyPEM(pub crypto.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemBlockPublic, Bytes: der})), nil
}

// ParsePublicKeyPEM 从 PEM 文本解析公钥
func ParsePublicKeyPEM(s string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemBlockPublic {
		return nil, fmt.Errorf("%w: not a public key PEM block", ErrInvalidKey)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// EncodePrivateKeyPEM 将私钥编码为 PKCS#8/PEM 文本
func EncodePrivateKeyPEM(priv crypto.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemBlockPrivate, Bytes: der})), nil
}

// ParsePrivateKeyPEM 从 PEM 文本解析私钥
//
// 仅接受 PKCS#8 块。
func ParsePrivateKeyPEM(s string) (crypto.PrivateKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemBlockPrivate {
		return nil, fmt.Errorf("%w: not a private key PEM block", ErrInvalidKey)
	}
	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return priv, nil
}
