package openpgp

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// Keyring 多个公钥 bundle 上的验签入口
//
// 短 keyid 可能在多个 bundle 间撞车，验签会依次尝试每个候选，
// 任何一个通过即成功；全部失败时聚合各候选的错误返回。
type Keyring struct {
	bundles []*Bundle
}

// NewKeyring 构造 keyring
func NewKeyring(bundles ...*Bundle) *Keyring {
	return &Keyring{bundles: bundles}
}

// Add 追加一个 bundle
func (k *Keyring) Add(b *Bundle) {
	k.bundles = append(k.bundles, b)
}

// FindKey 在所有 bundle 中查找签发者，返回首个匹配
func (k *Keyring) FindKey(issuer string) (*BundleKey, error) {
	for _, b := range k.bundles {
		if key, err := b.FindKey(issuer); err == nil {
			return key, nil
		}
	}
	return nil, ErrKeyNotFound
}

// Verify 以当前时间在 keyring 上验签，见 VerifyAt
func (k *Keyring) Verify(content []byte, sig *SignaturePacket, policy *AlgorithmPolicy) (bool, error) {
	return k.VerifyAt(content, sig, policy, time.Now())
}

// VerifyAt 在 keyring 上验签
//
// 对每个持有签发者的 bundle 尝试一次。有任一验签通过返回
// (true, nil)；有候选但全部无效返回 (false, nil)；候选全部
// 出错返回聚合错误；无候选返回 ErrKeyNotFound。
func (k *Keyring) VerifyAt(content []byte, sig *SignaturePacket, policy *AlgorithmPolicy, now time.Time) (bool, error) {
	issuer := sig.Issuer()
	if issuer == "" {
		return false, errors.New("signature carries no issuer")
	}

	var errs error
	attempted := false
	for _, b := range k.bundles {
		if _, err := b.FindKey(issuer); err != nil {
			continue
		}
		ok, err := VerifyAt(content, sig, b, policy, now)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		attempted = true
		if ok {
			return true, nil
		}
	}

	if attempted {
		// 有候选完成了验签即给出判定，其余候选的错误降级为日志
		if errs != nil {
			log.Debug("some candidates errored during verification", "issuer", issuer, "err", errs)
		}
		return false, nil
	}
	if errs != nil {
		return false, errs
	}
	return false, ErrKeyNotFound
}
