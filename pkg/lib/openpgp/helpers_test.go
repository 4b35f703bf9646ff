package openpgp

// 测试用的包构造辅助：从 Go 原生密钥拼出传输格式字节，
// 摘要与 trailer 的重建独立于被测代码。

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/bits"
	"testing"
	"time"
)

// mpi 编码一个多精度整数
func mpi(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) == 0 {
		return []byte{0, 0}
	}
	bitLen := (len(b)-1)*8 + bits.Len8(b[0])
	out := []byte{byte(bitLen >> 8), byte(bitLen)}
	return append(out, b...)
}

// newFormatPacket 以新格式头封装包体
func newFormatPacket(tag Tag, body []byte) []byte {
	header := []byte{0xc0 | byte(tag)}
	switch {
	case len(body) < 192:
		header = append(header, byte(len(body)))
	case len(body) < 8384:
		n := len(body) - 192
		header = append(header, byte(n>>8)+192, byte(n))
	default:
		header = append(header, 0xff)
		header = binary.BigEndian.AppendUint32(header, uint32(len(body)))
	}
	return append(header, body...)
}

// subpacket 编码一个子包（1 字节长度足够测试使用）
func subpacket(typ uint8, body []byte) []byte {
	out := []byte{byte(1 + len(body)), typ}
	return append(out, body...)
}

// ============================================================================
//                              公钥包构造
// ============================================================================

func ed25519KeyBody(pub ed25519.PublicKey, created time.Time) []byte {
	var b bytes.Buffer
	b.WriteByte(4)
	binary.Write(&b, binary.BigEndian, uint32(created.Unix()))
	b.WriteByte(byte(PubKeyEdDSA))
	oid, _ := hex.DecodeString(oidEd25519)
	b.WriteByte(byte(len(oid)))
	b.Write(oid)
	b.Write(mpi(append([]byte{0x40}, pub...)))
	return b.Bytes()
}

func ecdsaP256KeyBody(pub *ecdsa.PublicKey, created time.Time) []byte {
	var b bytes.Buffer
	b.WriteByte(4)
	binary.Write(&b, binary.BigEndian, uint32(created.Unix()))
	b.WriteByte(byte(PubKeyECDSA))
	oid, _ := hex.DecodeString("2a8648ce3d030107")
	b.WriteByte(byte(len(oid)))
	b.Write(oid)
	point := elliptic.Marshal(elliptic.P256(), pub.X, pub.Y)
	b.Write(mpi(point))
	return b.Bytes()
}

func rsaKeyBody(pub *rsa.PublicKey, created time.Time) []byte {
	var b bytes.Buffer
	b.WriteByte(4)
	binary.Write(&b, binary.BigEndian, uint32(created.Unix()))
	b.WriteByte(byte(PubKeyRSA))
	b.Write(mpi(pub.N.Bytes()))
	b.Write(mpi([]byte{byte(pub.E >> 16), byte(pub.E >> 8), byte(pub.E)}))
	return b.Bytes()
}

// testFingerprint 独立重建 v4 指纹
func testFingerprint(keyBody []byte) []byte {
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(keyBody) >> 8), byte(len(keyBody))})
	h.Write(keyBody)
	return h.Sum(nil)
}

// ============================================================================
//                              签名包构造
// ============================================================================

// sigSpec 签名包构造参数
type sigSpec struct {
	sigType    uint8
	pkAlgo     PublicKeyAlgorithm
	hashAlgo   HashAlgorithm
	created    time.Time
	issuerFP   []byte // 20 字节，空则省略指纹子包
	issuerID   []byte // 8 字节，空则省略 keyid 子包
	keyExpiry  uint32 // 0 则省略
	signDigest func(digest []byte) []byte
}

// buildSignaturePacket 构造 v4 签名包体
//
// content 为被签名的文档字节，signDigest 负责对重建的摘要
// 产生签名材料（已编码为 MPI 序列）。
func buildSignaturePacket(t *testing.T, content []byte, spec sigSpec) []byte {
	t.Helper()

	var hashed bytes.Buffer
	var ct [4]byte
	binary.BigEndian.PutUint32(ct[:], uint32(spec.created.Unix()))
	hashed.Write(subpacket(SubpacketCreationTime, ct[:]))
	if spec.keyExpiry != 0 {
		var ke [4]byte
		binary.BigEndian.PutUint32(ke[:], spec.keyExpiry)
		hashed.Write(subpacket(SubpacketKeyExpiration, ke[:]))
	}
	if len(spec.issuerFP) == 20 {
		hashed.Write(subpacket(SubpacketIssuerFingerprint, append([]byte{4}, spec.issuerFP...)))
	}

	var body bytes.Buffer
	body.WriteByte(4)
	body.WriteByte(spec.sigType)
	body.WriteByte(byte(spec.pkAlgo))
	body.WriteByte(byte(spec.hashAlgo))
	binary.Write(&body, binary.BigEndian, uint16(hashed.Len()))
	body.Write(hashed.Bytes())

	hashedRegion := append([]byte(nil), body.Bytes()...)

	var unhashed bytes.Buffer
	if len(spec.issuerID) == 8 {
		unhashed.Write(subpacket(SubpacketIssuerKeyID, spec.issuerID))
	}
	binary.Write(&body, binary.BigEndian, uint16(unhashed.Len()))
	body.Write(unhashed.Bytes())

	// 摘要重建独立于被测实现
	h := newTestHash(spec.hashAlgo)
	h.Write(content)
	h.Write(hashedRegion)
	h.Write([]byte{0x04, 0xff})
	var tl [4]byte
	binary.BigEndian.PutUint32(tl[:], uint32(len(hashedRegion)))
	h.Write(tl[:])
	digest := h.Sum(nil)

	body.Write(digest[:2])
	body.Write(spec.signDigest(digest))

	return body.Bytes()
}

// ============================================================================
//                              已签名的测试密钥
// ============================================================================

// testIdentity 一套完整的 Ed25519 测试身份
type testIdentity struct {
	priv    ed25519.PrivateKey
	keyBody []byte
	fp      []byte
	bundle  *Bundle
	raw     []byte
}

// newEd25519Identity 生成密钥并组装最小 bundle（公钥 + 用户标识）
func newEd25519Identity(t *testing.T, created time.Time) *testIdentity {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	keyBody := ed25519KeyBody(pub, created)
	raw := newFormatPacket(TagPublicKey, keyBody)
	raw = append(raw, newFormatPacket(TagUserID, []byte("Test <test@example.com>"))...)

	bundle, err := ParseBundle(raw)
	if err != nil {
		t.Fatal(err)
	}
	return &testIdentity{
		priv:    priv,
		keyBody: keyBody,
		fp:      testFingerprint(keyBody),
		bundle:  bundle,
		raw:     raw,
	}
}

// signPacketBytes 对 content 构造完整的二进制文档签名包字节
func (id *testIdentity) signPacketBytes(t *testing.T, content []byte) []byte {
	t.Helper()
	body := buildSignaturePacket(t, content, sigSpec{
		sigType:  sigTypeBinary,
		pkAlgo:   PubKeyEdDSA,
		hashAlgo: HashSHA256,
		created:  time.Now(),
		issuerFP: id.fp,
		signDigest: func(digest []byte) []byte {
			raw := ed25519.Sign(id.priv, digest)
			return append(mpi(raw[:32]), mpi(raw[32:])...)
		},
	})
	return newFormatPacket(TagSignature, body)
}

// sign 对 content 构造一个可通过验证的已解析签名包
func (id *testIdentity) sign(t *testing.T, content []byte) *SignaturePacket {
	t.Helper()
	packet, err := ParsePackets(id.signPacketBytes(t, content)).Next()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := ParseSignature(packet)
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

func newTestHash(h HashAlgorithm) interface {
	Write([]byte) (int, error)
	Sum([]byte) []byte
} {
	switch h {
	case HashSHA256:
		return sha256.New()
	case HashSHA1:
		return sha1.New() //nolint:gosec
	default:
		panic("unsupported test hash")
	}
}
