// Package lib 包含签名基础库的各功能包
//
//   - cjson: 规范化 JSON 序列化与摘要
//   - keys: 后端无关的密钥与签名模型
//   - signer: Signer/Verifier 接口与后端注册表
//   - softkey: 进程内软件密钥后端
//   - hsm: PKCS#11 硬件令牌适配
//   - kms: 云密钥管理服务适配
//   - openpgp: RFC 4880 包解析与验签
//
// 包之间自下而上单向依赖：cjson 与 keys 是叶子，signer 依赖
// keys，各后端依赖 signer，根包负责把内置后端装配进默认
// 注册表。
package lib
