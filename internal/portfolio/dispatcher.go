package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/stream"
)

// HoldingsFetcher resolves a wallet address's raw token balances. The
// Solana RPC client that implements this is an external collaborator
// and out of scope here — the dispatcher only needs the interface.
type HoldingsFetcher interface {
	Holdings(ctx context.Context, walletAddress string) ([]domain.Holding, error)
}

// Dispatcher answers the portfolio-owned commands off cmd.requests:
// /balance, /holdings, /add_wallet, /remove_wallet. /signals is owned
// by the analytics dispatcher against the same streams.
type Dispatcher struct {
	Bus      stream.EventBus
	Store    *Store
	Oracle   *Oracle
	Valuator *Valuator
	Fetcher  HoldingsFetcher
	Log      zerolog.Logger
}

// Run subscribes to cmd.requests under the portfolio consumer group and
// serves it until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Bus.Subscribe(ctx, stream.TopicCmdRequests, stream.GroupPortfolio, d.handle); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

var ownedCommands = map[string]bool{
	"/balance": true, "/holdings": true, "/add_wallet": true, "/remove_wallet": true,
}

func (d *Dispatcher) handle(ctx context.Context, msg *stream.Message) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		d.Log.Warn().Err(err).Msg("malformed command envelope, dropping")
		return nil
	}
	var cmd domain.Command
	if err := json.Unmarshal(envelope.Data, &cmd); err != nil {
		d.Log.Warn().Err(err).Msg("malformed command, dropping")
		return nil
	}

	if !ownedCommands[cmd.Cmd] {
		return nil
	}

	reply := d.route(ctx, cmd)
	return d.publishReply(ctx, reply)
}

func (d *Dispatcher) route(ctx context.Context, cmd domain.Command) domain.Reply {
	var (
		message string
		data    json.RawMessage
		err     error
	)

	switch cmd.Cmd {
	case "/balance":
		message, data, err = d.handleBalance(ctx, cmd)
	case "/holdings":
		message, data, err = d.handleHoldings(ctx, cmd)
	case "/add_wallet":
		message, data, err = d.handleAddWallet(ctx, cmd)
	case "/remove_wallet":
		message, data, err = d.handleRemoveWallet(ctx, cmd)
	}

	if err != nil {
		return domain.Reply{CorrID: cmd.CorrID, OK: false, Message: err.Error(), Ts: nowISO()}
	}
	return domain.Reply{CorrID: cmd.CorrID, OK: true, Message: message, Data: data, Ts: nowISO()}
}

func (d *Dispatcher) valueWallets(ctx context.Context, addresses []string) (domain.PortfolioSummary, error) {
	var all []domain.Holding
	for _, addr := range addresses {
		holdings, err := d.Fetcher.Holdings(ctx, addr)
		if err != nil {
			return domain.PortfolioSummary{}, fmt.Errorf("fetch holdings for %s: %w", addr, err)
		}
		for _, h := range holdings {
			all = append(all, d.Oracle.Price(ctx, h))
		}
	}
	return d.Valuator.Value(all), nil
}

func (d *Dispatcher) handleBalance(ctx context.Context, cmd domain.Command) (string, json.RawMessage, error) {
	userID, err := d.Store.CreateOrGetUser(ctx, cmd.From.TgUserID, cmd.From.Role)
	if err != nil {
		return "", nil, err
	}
	addresses, err := d.Store.ActiveWallets(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	summary, err := d.valueWallets(ctx, addresses)
	if err != nil {
		return "", nil, err
	}

	message := fmt.Sprintf("Total: $%.2f across %d priced token(s)", summary.TotalUSD, summary.IncludedCount)
	if summary.Notes != "" {
		message += ". " + summary.Notes
	}
	data, _ := json.Marshal(summary)
	return message, data, nil
}

func (d *Dispatcher) handleHoldings(ctx context.Context, cmd domain.Command) (string, json.RawMessage, error) {
	var args struct {
		Limit int `json:"limit"`
	}
	_ = json.Unmarshal(cmd.Args, &args)
	if args.Limit <= 0 {
		args.Limit = 10
	}

	userID, err := d.Store.CreateOrGetUser(ctx, cmd.From.TgUserID, cmd.From.Role)
	if err != nil {
		return "", nil, err
	}
	addresses, err := d.Store.ActiveWallets(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	summary, err := d.valueWallets(ctx, addresses)
	if err != nil {
		return "", nil, err
	}

	top := summary.Holdings
	if len(top) > args.Limit {
		top = top[:args.Limit]
	}
	message := fmt.Sprintf("Top %d holding(s) of %d", len(top), len(summary.Holdings))
	data, _ := json.Marshal(top)
	return message, data, nil
}

func (d *Dispatcher) handleAddWallet(ctx context.Context, cmd domain.Command) (string, json.RawMessage, error) {
	if cmd.From.Role != domain.RoleOwner {
		return "", nil, fmt.Errorf("add_wallet is owner-only")
	}
	var args struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(cmd.Args, &args); err != nil || args.Address == "" {
		return "", nil, fmt.Errorf("address required")
	}
	userID, err := d.Store.CreateOrGetUser(ctx, cmd.From.TgUserID, cmd.From.Role)
	if err != nil {
		return "", nil, err
	}
	if _, err := d.Store.AddWallet(ctx, userID, args.Address); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Wallet %s added", args.Address), nil, nil
}

func (d *Dispatcher) handleRemoveWallet(ctx context.Context, cmd domain.Command) (string, json.RawMessage, error) {
	if cmd.From.Role != domain.RoleOwner {
		return "", nil, fmt.Errorf("remove_wallet is owner-only")
	}
	var args struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(cmd.Args, &args); err != nil || args.Address == "" {
		return "", nil, fmt.Errorf("address required")
	}
	if err := d.Store.RemoveWallet(ctx, args.Address); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Wallet %s removed", args.Address), nil, nil
}

func (d *Dispatcher) publishReply(ctx context.Context, reply domain.Reply) error {
	payload, err := json.Marshal(struct {
		Data domain.Reply `json:"data"`
	}{Data: reply})
	if err != nil {
		return err
	}
	return d.Bus.Publish(ctx, stream.TopicCmdReplies, reply.CorrID, payload)
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
