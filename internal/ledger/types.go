package ledger

import "context"

// Account 链上账户的签名元数据
type Account struct {
	AccountNumber uint64
	Sequence      uint64
}

// Authenticator 链上已注册的委托签名能力
type Authenticator struct {
	ID     uint64
	Type   string
	Config []byte
}

// BroadcastResult 交易广播结果
type BroadcastResult struct {
	TxHash string
	Code   uint32
	RawLog string
}

// Client 账本操作的抽象（REST/LCD 网关之上）
// 桥只消费这几个操作：账户查询、广播、authenticator 列表、最新高度
type Client interface {
	// Account 查询账户的 (account_number, sequence)
	// 链上未见过的地址返回零值账户（sequence = 0），不算错误
	Account(ctx context.Context, address string) (*Account, error)

	// BroadcastTx 以同步模式广播已签名交易
	BroadcastTx(ctx context.Context, txBytes []byte) (*BroadcastResult, error)

	// Authenticators 列出地址名下已注册的 authenticator
	Authenticators(ctx context.Context, address string) ([]Authenticator, error)

	// LatestHeight 查询最新区块高度
	LatestHeight(ctx context.Context) (int64, error)
}
