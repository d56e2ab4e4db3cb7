package walletsim

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/config"
	"github.com/kashguard/go-sign-bridge/internal/types"
)

const (
	bridgeURLFlag string = "bridge-url"
	mnemonicFlag  string = "mnemonic"
)

// New 模拟钱包扩展的测试客户端
// 只面向测试网：用本地密钥走完 /wallet → /payload → /submit，
// 验证一条真实的开通链路而不需要浏览器
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walletsim",
		Short: "Drive a running bridge like the wallet extension would (testnet only)",
		Run: func(cmd *cobra.Command, _ []string) {
			bridgeURL, _ := cmd.Flags().GetString(bridgeURLFlag)
			mnemonic, _ := cmd.Flags().GetString(mnemonicFlag)
			run(bridgeURL, mnemonic)
		},
	}
	cmd.Flags().String(bridgeURLFlag, "", "pairing URL printed by the server command (required)")
	cmd.Flags().String(mnemonicFlag, "", "master wallet mnemonic; generated when omitted")
	_ = cmd.MarkFlagRequired(bridgeURLFlag)
	return cmd
}

func run(bridgeURL, mnemonic string) {
	cfg := config.DefaultServiceConfigFromEnv()
	config.InitLogger(cfg)

	net, err := chain.ResolveNetwork(cfg.Provisioning.ChainID, cfg.Ledger.Endpoint, cfg.Provisioning.FeeDenom)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve network")
	}

	var master *chain.SessionKey
	if mnemonic != "" {
		master, err = chain.SessionKeyFromMnemonic(mnemonic, net.Bech32Prefix)
	} else {
		master, err = chain.GenerateSessionKey(net.Bech32Prefix)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare master wallet key")
	}
	defer master.Destroy()

	log.Info().Str("address", master.Address).Msg("Simulating wallet extension")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := &simClient{baseURL: bridgeURL, http: &http.Client{Timeout: 30 * time.Second}}

	if err := client.postWallet(ctx, master); err != nil {
		log.Fatal().Err(err).Msg("Failed to report wallet identity")
	}

	payload, err := client.getPayload(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch sign payload")
	}
	if payload.ChainID != net.ChainID {
		log.Fatal().Str("got", payload.ChainID).Str("want", net.ChainID).Msg("Bridge issued a payload for a different chain")
	}

	// 压缩公钥签名的 compact 形式是 [v || r || s]，链上只要 r || s
	digest := sha256.Sum256(payload.SignDocBytes())
	signature := ecdsa.SignCompact(master.PrivKey, digest[:], true)[1:]

	txHash, err := client.postSubmit(ctx, signature, payload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to submit signature")
	}

	log.Info().Str("tx_hash", txHash).Msg("Session provisioning submitted")
}

// simClient 面向桥 HTTP 端点的最小客户端
type simClient struct {
	baseURL string
	http    *http.Client
}

func (c *simClient) postWallet(ctx context.Context, master *chain.SessionKey) error {
	payload := &types.PostWalletPayload{
		Address:      master.Address,
		PubkeyBase64: base64.StdEncoding.EncodeToString(master.PubKey),
	}
	var res types.PostWalletResponse
	return c.postJSON(ctx, "/wallet", payload, &res)
}

func (c *simClient) getPayload(ctx context.Context) (*chain.SignPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payload", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build payload request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch payload")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read payload response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("payload request failed with status %d: %s", resp.StatusCode, body)
	}

	var res types.GetSignPayloadResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "failed to parse payload response")
	}

	bodyBytes, err := base64.StdEncoding.DecodeString(res.BodyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode body bytes")
	}
	authInfoBytes, err := base64.StdEncoding.DecodeString(res.AuthInfoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode auth info bytes")
	}
	accountNumber, err := strconv.ParseUint(res.AccountNumber, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse account number")
	}

	return &chain.SignPayload{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		AccountNumber: accountNumber,
		ChainID:       res.ChainID,
	}, nil
}

func (c *simClient) postSubmit(ctx context.Context, signature []byte, payload *chain.SignPayload) (string, error) {
	req := &types.PostSubmitPayload{
		SignatureBase64: base64.StdEncoding.EncodeToString(signature),
		BodyBytes:       base64.StdEncoding.EncodeToString(payload.BodyBytes),
		AuthInfoBytes:   base64.StdEncoding.EncodeToString(payload.AuthInfoBytes),
	}
	var res types.PostSubmitResponse
	if err := c.postJSON(ctx, "/submit", req, &res); err != nil {
		return "", err
	}
	return res.TxHash, nil
}

func (c *simClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s request", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "failed to build %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s response", path)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s failed with status %d: %s", path, resp.StatusCode, body)
	}
	return errors.Wrapf(json.Unmarshal(body, out), "failed to parse %s response", path)
}
