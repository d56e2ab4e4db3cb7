package chain

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160"

	internalcrypto "github.com/kashguard/go-sign-bridge/internal/crypto"
)

// CompressedPubKeyLen 压缩 secp256k1 公钥长度
const CompressedPubKeyLen = 33

// sessionKeyDomain 会话密钥派生的 HMAC 域分隔串
const sessionKeyDomain = "Bitcoin seed"

// SessionKey 本地生成的临时会话密钥对
// 助记词和私钥属于敏感材料：不落日志，撤销/替换时清零
type SessionKey struct {
	Mnemonic *internalcrypto.SecureString
	PrivKey  *secp256k1.PrivateKey
	PubKey   []byte // 压缩公钥
	Address  string
}

// GenerateSessionKey 生成新的会话密钥（256 位熵的 bip39 助记词）
func GenerateSessionKey(bech32Prefix string) (*SessionKey, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate mnemonic")
	}
	internalcrypto.ZeroBytes(entropy)

	key, err := SessionKeyFromMnemonic(mnemonic, bech32Prefix)
	if err != nil {
		return nil, err
	}
	return key, nil
}

// SessionKeyFromMnemonic 从助记词确定性恢复会话密钥
func SessionKeyFromMnemonic(mnemonic, bech32Prefix string) (*SessionKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	defer internalcrypto.ZeroBytes(seed)

	priv, err := privKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}

	pub := priv.PubKey().SerializeCompressed()
	address, err := AddressFromPubKey(bech32Prefix, pub)
	if err != nil {
		priv.Zero()
		return nil, err
	}

	return &SessionKey{
		Mnemonic: internalcrypto.NewSecureString(mnemonic),
		PrivKey:  priv,
		PubKey:   pub,
		Address:  address,
	}, nil
}

// privKeyFromSeed 从 bip39 种子派生 secp256k1 私钥（BIP32 主密钥步骤）
func privKeyFromSeed(seed []byte) (*secp256k1.PrivateKey, error) {
	mac := hmac.New(sha512.New, []byte(sessionKeyDomain))
	if _, err := mac.Write(seed); err != nil {
		return nil, errors.Wrap(err, "failed to derive key material")
	}
	sum := mac.Sum(nil)
	defer internalcrypto.ZeroBytes(sum)

	var keyBytes [32]byte
	copy(keyBytes[:], sum[:32])
	defer internalcrypto.ZeroBytes(keyBytes[:])

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetBytes(&keyBytes); overflow != 0 || scalar.IsZero() {
		// 概率上不可能发生；发生即视为种子不可用
		return nil, errors.New("derived key material is not a valid scalar")
	}

	return secp256k1.NewPrivateKey(&scalar), nil
}

// AddressFromPubKey 从压缩公钥生成 bech32 地址（sha256 + ripemd160）
func AddressFromPubKey(bech32Prefix string, pubKey []byte) (string, error) {
	if bech32Prefix == "" {
		return "", errors.New("bech32 prefix is required")
	}
	if len(pubKey) != CompressedPubKeyLen {
		return "", errors.Errorf("public key must be %d bytes, got %d", CompressedPubKeyLen, len(pubKey))
	}

	sha := sha256.Sum256(pubKey)
	ripemd := ripemd160.New()
	if _, err := ripemd.Write(sha[:]); err != nil {
		return "", errors.Wrap(err, "failed to hash public key")
	}
	hash160 := ripemd.Sum(nil)

	converted, err := bech32.ConvertBits(hash160, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert address bits")
	}
	address, err := bech32.Encode(bech32Prefix, converted)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode bech32 address")
	}
	return address, nil
}

// ParseCompressedPubKey 校验并规范化钱包上报的压缩公钥
func ParseCompressedPubKey(pubKey []byte) ([]byte, error) {
	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse secp256k1 pubkey")
	}
	return key.SerializeCompressed(), nil
}

// Destroy 清零会话密钥材料
func (k *SessionKey) Destroy() {
	if k == nil {
		return
	}
	if k.Mnemonic != nil {
		k.Mnemonic.Destroy()
	}
	if k.PrivKey != nil {
		k.PrivKey.Zero()
	}
}
