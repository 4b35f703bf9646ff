package openpgp

import (
	"bytes"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignatureFields(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	fp := bytes.Repeat([]byte{0xab}, 20)

	body := buildSignaturePacket(t, []byte("doc"), sigSpec{
		sigType:  sigTypeBinary,
		pkAlgo:   PubKeyEdDSA,
		hashAlgo: HashSHA256,
		created:  created,
		issuerFP: fp,
		issuerID: fp[12:],
		signDigest: func(digest []byte) []byte {
			return append(mpi(bytes.Repeat([]byte{0x11}, 32)), mpi(bytes.Repeat([]byte{0x22}, 32))...)
		},
	})

	packet, err := ParsePackets(newFormatPacket(TagSignature, body)).Next()
	require.NoError(t, err)
	sig, err := ParseSignature(packet)
	require.NoError(t, err)

	assert.Equal(t, uint8(4), sig.Version)
	assert.Equal(t, sigTypeBinary, sig.SigType)
	assert.Equal(t, PubKeyEdDSA, sig.PubKeyAlgo)
	assert.Equal(t, HashSHA256, sig.HashAlgo)

	got, ok := sig.CreationTime()
	require.True(t, ok)
	assert.Equal(t, created, got)

	// 指纹子包优先于短 keyid
	assert.Equal(t, hex.EncodeToString(fp), sig.Issuer())

	// HashedRegion 覆盖版本字节到被哈希子包区末尾
	assert.Equal(t, body[:len(sig.HashedRegion)], sig.HashedRegion)
	assert.Equal(t, byte(4), sig.HashedRegion[0])

	assert.Equal(t, bytes.Repeat([]byte{0x11}, 32), sig.R)
	assert.Equal(t, bytes.Repeat([]byte{0x22}, 32), sig.S)
}

func TestIssuerFallsBackToUnhashedKeyID(t *testing.T) {
	keyid := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	body := buildSignaturePacket(t, nil, sigSpec{
		sigType:  sigTypeBinary,
		pkAlgo:   PubKeyEdDSA,
		hashAlgo: HashSHA256,
		created:  time.Now(),
		issuerID: keyid,
		signDigest: func([]byte) []byte {
			return append(mpi([]byte{1}), mpi([]byte{2})...)
		},
	})

	packet, err := ParsePackets(newFormatPacket(TagSignature, body)).Next()
	require.NoError(t, err)
	sig, err := ParseSignature(packet)
	require.NoError(t, err)

	assert.Equal(t, "0102030405060708", sig.Issuer())
}

func TestParseSignatureRejects(t *testing.T) {
	t.Run("wrong tag", func(t *testing.T) {
		_, err := ParseSignature(&Packet{Tag: TagUserID, Body: []byte("x")})
		var ferr *PacketFormatError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("v3 signature", func(t *testing.T) {
		_, err := ParseSignature(&Packet{Tag: TagSignature, Body: []byte{3, 0, 0, 0}})
		var ferr *PacketFormatError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("truncated subpacket region", func(t *testing.T) {
		// hashedLen 声称 100 字节但没有数据
		body := []byte{4, 0x00, byte(PubKeyEdDSA), byte(HashSHA256), 0x00, 100}
		_, err := ParseSignature(&Packet{Tag: TagSignature, Body: body})
		var ferr *PacketFormatError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("subpacket overruns region", func(t *testing.T) {
		// 子包长度 50 超出 3 字节的子包区
		body := []byte{4, 0x00, byte(PubKeyEdDSA), byte(HashSHA256), 0x00, 3, 50, 2, 0}
		_, err := ParseSignature(&Packet{Tag: TagSignature, Body: body})
		var ferr *PacketFormatError
		require.ErrorAs(t, err, &ferr)
	})
}

func TestParseSubpacketsCritical(t *testing.T) {
	// critical 位（0x80）剥离进 Critical 字段
	data := []byte{0x05, 0x80 | SubpacketCreationTime, 0, 0, 0, 1}
	subs, err := parseSubpackets(data, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, SubpacketCreationTime, subs[0].Type)
	assert.True(t, subs[0].Critical)
	assert.Equal(t, []byte{0, 0, 0, 1}, subs[0].Body)
}

func TestParseSubpacketsTwoOctetLength(t *testing.T) {
	// 2 字节长度: 0xc0 0x00 → (0xc0-192)<<8 + 0x00 + 192 = 192
	payload := bytes.Repeat([]byte{0x5a}, 191)
	data := append([]byte{0xc0, 0x00, SubpacketIssuerKeyID}, payload...)
	subs, err := parseSubpackets(data, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, SubpacketIssuerKeyID, subs[0].Type)
	assert.Equal(t, payload, subs[0].Body)
}
