package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// RESTClient 基于链 REST/LCD 网关的 Client 实现
type RESTClient struct {
	endpoint string
	client   *http.Client
}

// 编译期接口检查
var _ Client = (*RESTClient)(nil)

// NewRESTClient 创建 REST 账本客户端
func NewRESTClient(endpoint string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RESTClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// accountResponse /cosmos/auth/v1beta1/accounts/{address} 响应
type accountResponse struct {
	Account struct {
		Type          string `json:"@type"`
		AccountNumber string `json:"account_number"`
		Sequence      string `json:"sequence"`
		BaseAccount   *struct {
			AccountNumber string `json:"account_number"`
			Sequence      string `json:"sequence"`
		} `json:"base_account"`
	} `json:"account"`
}

// accountInfoResponse /cosmos/auth/v1beta1/account_info/{address} 响应
type accountInfoResponse struct {
	Info struct {
		AccountNumber string `json:"account_number"`
		Sequence      string `json:"sequence"`
	} `json:"info"`
}

// Account 查询账户元数据
// 主查询 404 时退回 account_info 派生查询；两者都未见该地址时返回零值账户
func (c *RESTClient) Account(ctx context.Context, address string) (*Account, error) {
	if address == "" {
		return nil, errors.New("address is required")
	}

	var resp accountResponse
	status, err := c.getJSON(ctx, "/cosmos/auth/v1beta1/accounts/"+address, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query account")
	}

	if status == http.StatusOK {
		number, sequence := resp.Account.AccountNumber, resp.Account.Sequence
		if resp.Account.BaseAccount != nil {
			number, sequence = resp.Account.BaseAccount.AccountNumber, resp.Account.BaseAccount.Sequence
		}
		return parseAccount(number, sequence)
	}

	if status != http.StatusNotFound {
		return nil, errors.Errorf("account query failed with status %d", status)
	}

	// 地址派生查询：新地址也能得到可用的 sequence=0
	var info accountInfoResponse
	status, err = c.getJSON(ctx, "/cosmos/auth/v1beta1/account_info/"+address, &info)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query account info")
	}

	switch status {
	case http.StatusOK:
		return parseAccount(info.Info.AccountNumber, info.Info.Sequence)
	case http.StatusNotFound:
		// 链上从未见过该地址
		return &Account{AccountNumber: 0, Sequence: 0}, nil
	default:
		return nil, errors.Errorf("account info query failed with status %d", status)
	}
}

// parseAccount 解析网关返回的十进制 account_number/sequence
func parseAccount(number, sequence string) (*Account, error) {
	n, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid account number %q", number)
	}
	seq, err := strconv.ParseUint(sequence, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid account sequence %q", sequence)
	}
	return &Account{AccountNumber: n, Sequence: seq}, nil
}

// broadcastRequest /cosmos/tx/v1beta1/txs 请求体
type broadcastRequest struct {
	TxBytes string `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

// broadcastResponse 广播响应
type broadcastResponse struct {
	TxResponse struct {
		TxHash string `json:"txhash"`
		Code   uint32 `json:"code"`
		RawLog string `json:"raw_log"`
	} `json:"tx_response"`
}

// BroadcastTx 同步广播交易，链上校验失败（code != 0）视为错误
func (c *RESTClient) BroadcastTx(ctx context.Context, txBytes []byte) (*BroadcastResult, error) {
	if len(txBytes) == 0 {
		return nil, errors.New("tx bytes are required")
	}

	reqBody, err := json.Marshal(&broadcastRequest{
		TxBytes: base64.StdEncoding.EncodeToString(txBytes),
		Mode:    "BROADCAST_MODE_SYNC",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal broadcast request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/cosmos/tx/v1beta1/txs", bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create broadcast request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "broadcast request failed")
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read broadcast response")
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("broadcast failed with status %d: %s", httpResp.StatusCode, string(body))
	}

	var resp broadcastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to parse broadcast response")
	}

	result := &BroadcastResult{
		TxHash: resp.TxResponse.TxHash,
		Code:   resp.TxResponse.Code,
		RawLog: resp.TxResponse.RawLog,
	}
	if result.Code != 0 {
		return result, errors.Errorf("transaction rejected with code %d: %s", result.Code, result.RawLog)
	}
	return result, nil
}

// authenticatorsResponse /dydxprotocol/accountplus/authenticators/{address} 响应
type authenticatorsResponse struct {
	AccountAuthenticators []struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Config string `json:"config"`
	} `json:"account_authenticators"`
}

// Authenticators 列出地址名下已注册的 authenticator
func (c *RESTClient) Authenticators(ctx context.Context, address string) ([]Authenticator, error) {
	if address == "" {
		return nil, errors.New("address is required")
	}

	var resp authenticatorsResponse
	status, err := c.getJSON(ctx, "/dydxprotocol/accountplus/authenticators/"+address, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list authenticators")
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("authenticator query failed with status %d", status)
	}

	result := make([]Authenticator, 0, len(resp.AccountAuthenticators))
	for _, a := range resp.AccountAuthenticators {
		id, err := strconv.ParseUint(a.ID, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid authenticator id %q", a.ID)
		}
		cfg, err := base64.StdEncoding.DecodeString(a.Config)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid authenticator config for id %s", a.ID)
		}
		result = append(result, Authenticator{ID: id, Type: a.Type, Config: cfg})
	}
	return result, nil
}

// latestBlockResponse /cosmos/base/tendermint/v1beta1/blocks/latest 响应
type latestBlockResponse struct {
	Block struct {
		Header struct {
			Height string `json:"height"`
		} `json:"header"`
	} `json:"block"`
}

// LatestHeight 查询最新区块高度
func (c *RESTClient) LatestHeight(ctx context.Context) (int64, error) {
	var resp latestBlockResponse
	status, err := c.getJSON(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", &resp)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query latest block")
	}
	if status != http.StatusOK {
		return 0, errors.Errorf("latest block query failed with status %d", status)
	}

	height, err := strconv.ParseInt(resp.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid block height %q", resp.Block.Header.Height)
	}
	return height, nil
}

// getJSON 执行 GET 并解码 JSON，404 交由调用方处理
func (c *RESTClient) getJSON(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to decode response")
	}
	return resp.StatusCode, nil
}
