package softkey

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/dep2p/go-sigkit/internal/util/logger"
	"github.com/dep2p/go-sigkit/pkg/lib/keys"
	"github.com/dep2p/go-sigkit/pkg/lib/signer"
)

var log = logger.Logger("softkey")

// ============================================================================
//                              密钥文件格式
// ============================================================================

// 密钥文件格式：
//
//   ┌────────────────────────────────────────────────────────────┐
//   │                    密钥文件                                 │
//   ├────────────────────────────────────────────────────────────┤
//   │  Magic:     "SIGKIT-KEY"  (10 bytes)                       │
//   │  Version:   uint8                                          │
//   │  Encrypted: uint8 (0=否, 1=是)                              │
//   │  Data:      密钥记录 JSON 或其加密数据                       │
//   └────────────────────────────────────────────────────────────┘
//
//   加密数据格式：
//   ┌────────────────────────────────────────────────────────────┐
//   │  Salt:       16 bytes                                      │
//   │  Nonce:      12 bytes                                      │
//   │  Ciphertext: 变长（AES-GCM 加密）                           │
//   └────────────────────────────────────────────────────────────┘

const (
	keyFileMagic   = "SIGKIT-KEY"
	keyFileVersion = 1

	saltSize  = 16
	nonceSize = 12

	// Argon2id 参数
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// 密钥文件相关错误
var (
	// ErrInvalidKeyFile 密钥文件格式错误
	ErrInvalidKeyFile = errors.New("invalid key file")

	// ErrPasswordRequired 文件已加密但未提供口令
	ErrPasswordRequired = errors.New("key file is encrypted, password required")

	// ErrDecryptionFailed 解密失败（口令错误或数据损坏）
	ErrDecryptionFailed = errors.New("key file decryption failed")
)

// PasswordProvider 按需提供密钥文件口令
//
// 仅在文件确实加密时调用，返回的口令不被缓存。
type PasswordProvider func() ([]byte, error)

// ============================================================================
//                              读写
// ============================================================================

// SaveKeyFile 将含私钥的密钥记录写入文件
//
// password 非空时使用 AES-GCM + Argon2id 加密。
func SaveKeyFile(path string, key *keys.Key, password []byte) error {
	if !key.CanSign() {
		return keys.ErrNoPrivateKey
	}

	record, err := key.ToJSON()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(keyFileMagic)
	buf.WriteByte(keyFileVersion)

	if len(password) > 0 {
		buf.WriteByte(1)
		encrypted, err := encryptData(record, password)
		if err != nil {
			return err
		}
		buf.Write(encrypted)
	} else {
		buf.WriteByte(0)
		buf.Write(record)
	}

	return os.WriteFile(path, buf.Bytes(), 0600)
}

// LoadKeyFile 从文件读取密钥记录
//
// 文件加密时通过 pw 获取口令；pw 为 nil 且文件加密时返回
// ErrPasswordRequired。
func LoadKeyFile(path string, pw PasswordProvider) (*keys.Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	headerLen := len(keyFileMagic) + 2
	if len(data) < headerLen {
		return nil, ErrInvalidKeyFile
	}
	if string(data[:len(keyFileMagic)]) != keyFileMagic {
		// 无魔数的文件按裸密钥记录 JSON 解析
		return keys.FromJSON(data)
	}

	version := data[len(keyFileMagic)]
	if version != keyFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeyFile, version)
	}

	encrypted := data[len(keyFileMagic)+1] == 1
	payload := data[headerLen:]

	if encrypted {
		if pw == nil {
			return nil, ErrPasswordRequired
		}
		password, err := pw()
		if err != nil {
			return nil, err
		}
		payload, err = decryptData(payload, password)
		if err != nil {
			return nil, err
		}
	}

	return keys.FromJSON(payload)
}

// SignerFactory 返回处理 "file:" 引用的 Signer 工厂
//
// 引用形如 "file:/path/to/key" 或不带前缀的裸路径。
func SignerFactory(pw PasswordProvider) signer.SignerFactory {
	return func(ref string) (signer.Signer, error) {
		_, path := signer.SplitRef(ref)

		key, err := LoadKeyFile(path, pw)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded software key", "keyid", key.KeyID, "scheme", key.Scheme)
		return NewSigner(key)
	}
}

// ============================================================================
//                              加密辅助函数
// ============================================================================

// encryptData 使用 AES-GCM 加密，结果为 salt || nonce || ciphertext
func encryptData(plaintext, password []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)
	return result, nil
}

// decryptData 解密 salt || nonce || ciphertext
func decryptData(data, password []byte) ([]byte, error) {
	if len(data) < saltSize+nonceSize {
		return nil, ErrDecryptionFailed
	}

	gcm, err := newGCM(password, data[:saltSize])
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, data[saltSize:saltSize+nonceSize], data[saltSize+nonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
