// Package sigkit 提供软件供应链元数据的密钥与签名抽象层
//
// sigkit 把可互换的签名后端（进程内软件密钥、PKCS#11 硬件
// 令牌、云 KMS、OpenPGP 密钥）统一在一对能力接口之后：
// Signer 产出与 keyid 绑定的签名，Verifier 对 (密钥, 数据,
// 签名) 三元组给出判定。调用方代码不依赖任何具体后端。
//
// # 快速开始
//
//	key, _ := sigkit.GenerateKey("ed25519")
//	softkey.SaveKeyFile("release.key", key, password)
//
//	sig, _ := sigkit.Sign(ctx, "file:release.key", metadata)
//	ok, _ := sigkit.Verify(key.Public(), metadata, sig)
//
// # 后端分发
//
// 签名按私钥引用的 scheme 前缀分发（"file:"、"hsm:"、"kms:"、
// "gpg:"），验签按 Key 的 (keytype, scheme) 组合分发。未注册
// 的前缀显式失败，绝不静默落到其他后端。
//
// # OpenPGP
//
// pkg/lib/openpgp 自带 RFC 4880 包解析器，GPG 管理的密钥产出
// 的签名无需调用外部 gpg 程序即可验证；签名本身经 Agent
// 协作方走外部进程。
package sigkit
