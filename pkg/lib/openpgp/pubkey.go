package openpgp

import (
	"bytes"
	"crypto/dsa" //nolint:staticcheck // 验证存量 DSA 签名仍需支持
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/sha1" //nolint:gosec // v4 指纹由 RFC 4880 规定为 SHA-1
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ============================================================================
//                              字段游标
// ============================================================================

// cursor 包体内的字段读取游标，越界产生带偏移的 PacketFormatError
type cursor struct {
	data []byte
	pos  int
	base int // data 在输入流中的偏移
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, formatErr(c.base+c.pos, "need %d bytes, have %d", n, len(c.data)-c.pos)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) byte() (byte, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// mpi 读取一个多精度整数：2 字节位长 + 向上取整的字节
func (c *cursor) mpi() ([]byte, error) {
	bits, err := c.uint16()
	if err != nil {
		return nil, err
	}
	return c.bytes((int(bits) + 7) / 8)
}

// ============================================================================
//                              曲线 OID
// ============================================================================

var curveOIDs = map[string]elliptic.Curve{
	"2a8648ce3d030107": elliptic.P256(),
	"2b81040022":       elliptic.P384(),
	"2b81040023":       elliptic.P521(),
}

const (
	oidSecp256k1 = "2b8104000a"
	oidEd25519   = "2b06010401da470f01"
)

// ============================================================================
//                              公钥包
// ============================================================================

// PublicKeyPacket 解码后的 v4 公钥或子公钥包
//
// 算法字段中仅与算法匹配的一个非空。
type PublicKeyPacket struct {
	// Version 包版本，仅支持 4
	Version uint8

	// CreationTime 密钥创建时间
	CreationTime time.Time

	// Algorithm 公钥算法
	Algorithm PublicKeyAlgorithm

	// RSA 公钥（PubKeyRSA / PubKeyRSASignOnly）
	RSA *RSAPublicKey

	// DSA 公钥
	DSA *dsa.PublicKey

	// ECDSA NIST 曲线公钥
	ECDSA *ecdsa.PublicKey

	// Secp256k1 secp256k1 曲线公钥
	Secp256k1 *secp256k1.PublicKey

	// Ed25519 EdDSA 公钥
	Ed25519 ed25519.PublicKey

	// Fingerprint v4 指纹，40 位小写十六进制
	Fingerprint string

	// KeyID 指纹末 8 字节，16 位小写十六进制
	KeyID string
}

// RSAPublicKey RSA 公钥参数
//
// 不直接用 crypto/rsa.PublicKey，指数在 OpenPGP 里是任意长
// MPI，超出 int 时需要显式报错而非截断。
type RSAPublicKey struct {
	N *big.Int
	E int
}

// ParsePublicKey 解码公钥包体
//
// offset 为包头在输入流中的偏移，用于错误定位。
func ParsePublicKey(p *Packet) (*PublicKeyPacket, error) {
	if p.Tag != TagPublicKey && p.Tag != TagPublicSubkey {
		return nil, formatErr(p.Offset, "packet tag %s is not a public key", p.Tag)
	}

	c := &cursor{data: p.Body, base: p.Offset}

	version, err := c.byte()
	if err != nil {
		return nil, err
	}
	if version != 4 {
		return nil, formatErr(p.Offset, "unsupported public key version %d", version)
	}

	created, err := c.uint32()
	if err != nil {
		return nil, err
	}

	algo, err := c.byte()
	if err != nil {
		return nil, err
	}

	pk := &PublicKeyPacket{
		Version:      version,
		CreationTime: time.Unix(int64(created), 0).UTC(),
		Algorithm:    PublicKeyAlgorithm(algo),
	}

	switch pk.Algorithm {
	case PubKeyRSA, PubKeyRSASignOnly:
		err = parseRSAKey(c, pk)
	case PubKeyDSA:
		err = parseDSAKey(c, pk)
	case PubKeyECDSA:
		err = parseECDSAKey(c, pk)
	case PubKeyEdDSA:
		err = parseEdDSAKey(c, pk)
	default:
		return nil, formatErr(p.Offset, "unsupported public key algorithm %d", algo)
	}
	if err != nil {
		return nil, err
	}

	pk.Fingerprint, pk.KeyID = fingerprintV4(p.Body)
	return pk, nil
}

func parseRSAKey(c *cursor, pk *PublicKeyPacket) error {
	n, err := c.mpi()
	if err != nil {
		return err
	}
	e, err := c.mpi()
	if err != nil {
		return err
	}
	if len(e) > 4 {
		return formatErr(c.base, "RSA exponent of %d bytes too large", len(e))
	}
	pk.RSA = &RSAPublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}
	return nil
}

func parseDSAKey(c *cursor, pk *PublicKeyPacket) error {
	var params [4][]byte // p, q, g, y
	for i := range params {
		b, err := c.mpi()
		if err != nil {
			return err
		}
		params[i] = b
	}
	pk.DSA = &dsa.PublicKey{
		Parameters: dsa.Parameters{
			P: new(big.Int).SetBytes(params[0]),
			Q: new(big.Int).SetBytes(params[1]),
			G: new(big.Int).SetBytes(params[2]),
		},
		Y: new(big.Int).SetBytes(params[3]),
	}
	return nil
}

func parseECDSAKey(c *cursor, pk *PublicKeyPacket) error {
	oid, err := c.oid()
	if err != nil {
		return err
	}
	point, err := c.mpi()
	if err != nil {
		return err
	}

	if oid == oidSecp256k1 {
		pub, err := secp256k1.ParsePubKey(point)
		if err != nil {
			return formatErr(c.base, "invalid secp256k1 point: %v", err)
		}
		pk.Secp256k1 = pub
		return nil
	}

	curve, ok := curveOIDs[oid]
	if !ok {
		return formatErr(c.base, "unsupported ECDSA curve OID %s", oid)
	}

	byteLen := (curve.Params().BitSize + 7) / 8
	if len(point) != 1+2*byteLen || point[0] != 0x04 {
		return formatErr(c.base, "invalid uncompressed point encoding for %s", curve.Params().Name)
	}
	x := new(big.Int).SetBytes(point[1 : 1+byteLen])
	y := new(big.Int).SetBytes(point[1+byteLen:])
	if !curve.IsOnCurve(x, y) {
		return formatErr(c.base, "point not on curve %s", curve.Params().Name)
	}
	pk.ECDSA = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return nil
}

func parseEdDSAKey(c *cursor, pk *PublicKeyPacket) error {
	oid, err := c.oid()
	if err != nil {
		return err
	}
	if oid != oidEd25519 {
		return formatErr(c.base, "unsupported EdDSA curve OID %s", oid)
	}
	point, err := c.mpi()
	if err != nil {
		return err
	}
	// 0x40 前缀表示原生编码
	if len(point) != 1+ed25519.PublicKeySize || point[0] != 0x40 {
		return formatErr(c.base, "invalid Ed25519 point encoding")
	}
	pk.Ed25519 = ed25519.PublicKey(bytes.Clone(point[1:]))
	return nil
}

// oid 读取 1 字节长度前缀的曲线 OID，返回小写十六进制
func (c *cursor) oid() (string, error) {
	n, err := c.byte()
	if err != nil {
		return "", err
	}
	if n == 0 || n == 0xff {
		return "", formatErr(c.base+c.pos-1, "reserved OID length 0x%02x", n)
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// fingerprintV4 计算 v4 指纹与短 keyid
//
// 指纹为 SHA-1(0x99 || uint16 包体长 || 包体)，keyid 为其末 8 字节。
func fingerprintV4(body []byte) (fingerprint, keyID string) {
	h := sha1.New() //nolint:gosec
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	sum := h.Sum(nil)
	fingerprint = hex.EncodeToString(sum)
	return fingerprint, fingerprint[len(fingerprint)-16:]
}
