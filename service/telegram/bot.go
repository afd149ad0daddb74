// Package telegram runs the Telegram front-end. Commands map onto the
// dispatcher's entry points; free text goes through the same
// classification pipeline as the HTTP chat surface.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sonic-agent/sonicbot/service/agent"
	"github.com/sonic-agent/sonicbot/service/intent"
)

const helpText = `I can help you with the Sonic ecosystem:

/balance <address> - wallet balance
/price <mint> - token price
/token-details <mint> - token metadata
/stats - chain TVL and volume
/faucet [address] - request test tokens
/send <amount> <address> - send SOL from my wallet (testnet only)
/pool <id> - liquidity pool info
/pools - top liquidity pools
/solsonic - the SOL-SONIC pool
/reset - forget our conversation

Or just ask me in plain language.`

// Bot polls Telegram for updates and answers them through the dispatcher.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *agent.Dispatcher
	logger     *slog.Logger
}

func NewBot(token string, dispatcher *agent.Dispatcher, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Bot{api: api, dispatcher: dispatcher, logger: logger}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("telegram bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply := b.replyFor(ctx, msg)
	if reply == "" {
		return
	}
	b.send(ctx, msg.Chat.ID, reply)
}

// conversationID keys the session store; one conversation per chat.
func conversationID(msg *tgbotapi.Message) string {
	return strconv.FormatInt(msg.Chat.ID, 10)
}

func (b *Bot) replyFor(ctx context.Context, msg *tgbotapi.Message) string {
	if !msg.IsCommand() {
		reply, err := b.dispatcher.Handle(ctx, conversationID(msg), msg.Text, agent.SurfaceTelegram)
		if err != nil {
			b.logger.Error("failed to handle message", "chat", msg.Chat.ID, "error", err)
			return "Something went wrong, please try again."
		}
		return reply
	}

	args := strings.Fields(msg.CommandArguments())
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch msg.Command() {
	case "start":
		return "Hi! I'm the Sonic assistant.\n\n" + helpText
	case "help":
		return helpText
	case "reset":
		b.dispatcher.Sessions().Reset(conversationID(msg))
		return "Conversation history cleared."
	case "balance":
		if arg(0) == "" {
			return "Usage: /balance <address>"
		}
		return b.dispatcher.Balance(ctx, agent.SurfaceTelegram, arg(0))
	case "price":
		if arg(0) == "" {
			return "Usage: /price <mint>"
		}
		return b.dispatcher.Price(ctx, agent.SurfaceTelegram, arg(0))
	case "token-details", "details":
		if arg(0) == "" {
			return "Usage: /token-details <mint>"
		}
		return b.dispatcher.TokenDetails(ctx, agent.SurfaceTelegram, arg(0))
	case "stats":
		return b.dispatcher.Stats(ctx, agent.SurfaceTelegram)
	case "faucet":
		return b.dispatcher.Faucet(ctx, agent.SurfaceTelegram, arg(0))
	case "send":
		amount, err := strconv.ParseFloat(arg(0), 64)
		if err != nil || arg(1) == "" {
			return "Usage: /send <amount> <address>"
		}
		return b.dispatcher.SendSOL(ctx, agent.SurfaceTelegram, amount, arg(1))
	case "pool":
		if arg(0) == "" {
			return "Usage: /pool <pool id>"
		}
		return b.dispatcher.Pool(ctx, agent.SurfaceTelegram, arg(0))
	case "pools":
		return b.dispatcher.Pools(ctx, agent.SurfaceTelegram)
	case "solsonic":
		return b.dispatcher.SolSonic(ctx, agent.SurfaceTelegram)
	case "wallet":
		return b.dispatcher.AgentInfo(ctx, agent.SurfaceTelegram, intent.ScopeAll)
	default:
		return "I don't know that command. Try /help."
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(out); err != nil {
		// Markdown parse failures are common with addresses; retry plain.
		out.ParseMode = ""
		if _, err := b.api.Send(out); err != nil {
			b.logger.ErrorContext(ctx, "failed to send telegram message", "chat", chatID, "error", err)
		}
	}
}
