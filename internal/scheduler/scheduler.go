package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"FXSentinel/internal/dashboard"
	"FXSentinel/internal/model"
	"FXSentinel/internal/notifier"
	"FXSentinel/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Dashboard is the part of dashboard.Service the scheduler drives.
type Dashboard interface {
	Evaluate(ctx context.Context, req dashboard.Request) (*dashboard.Result, error)
	Refresh()
	SelectedPair() string
	SelectPair(pair string) (model.Instrument, error)
	RiskParams() model.RiskParameters
	SetRiskParams(p model.RiskParameters) error
}

// Sender delivers a message to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the alert job and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Dashboard Dashboard
	Notifier  Sender
	Ctx       context.Context

	mu        sync.Mutex
	lastState map[string]model.SignalState
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, dash Dashboard, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Dashboard: dash,
		Notifier:  sender,
		Ctx:       ctx,
		lastState: make(map[string]model.SignalState),
	}
}

// RegisterAll registers the signal alert task.
func (s *Scheduler) RegisterAll(alertCron string) error {
	if _, err := s.Cron.AddFunc(alertCron, func() { s.CheckNow() }); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// CheckNow evaluates the selected pair and pushes an alert when its master
// signal state differs from the previous check. The first check of a pair
// only records the baseline. Reports whether an alert was sent.
func (s *Scheduler) CheckNow() bool {
	res, err := s.Dashboard.Evaluate(s.Ctx, dashboard.Request{})
	if err != nil {
		logger.Error("alert evaluation failed", logger.ErrorField(err))
		return false
	}

	s.mu.Lock()
	prev, seen := s.lastState[res.Pair]
	s.lastState[res.Pair] = res.Signal.State
	s.mu.Unlock()

	if !seen || prev == res.Signal.State {
		return false
	}
	logger.Info("signal state changed",
		logger.String("pair", res.Pair),
		logger.String("from", string(prev)),
		logger.String("to", string(res.Signal.State)),
	)
	s.trySend(notifier.FormatStateChange(prev, res))
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats append the bot name: /signal@FXSentinelBot
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/signal":
		res, err := s.Dashboard.Evaluate(ctx, dashboard.Request{})
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatSignal(res)
	case "/news":
		res, err := s.Dashboard.Evaluate(ctx, dashboard.Request{})
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatNews(res.Pair, res.News)
	case "/pair":
		if arg == "" {
			return "Usage: /pair EUR/USD"
		}
		inst, err := s.Dashboard.SelectPair(arg)
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatParams(inst.DisplayName, s.Dashboard.RiskParams())
	case "/sl", "/tp":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Sprintf("Usage: %s 0.5", cmd)
		}
		rp := s.Dashboard.RiskParams()
		if cmd == "/sl" {
			rp.SLMultiplier = v
		} else {
			rp.TPMultiplier = v
		}
		if err := s.Dashboard.SetRiskParams(rp); err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatParams(s.Dashboard.SelectedPair(), rp)
	case "/params":
		return notifier.FormatParams(s.Dashboard.SelectedPair(), s.Dashboard.RiskParams())
	case "/refresh":
		s.Dashboard.Refresh()
		return "🔄 Cached market data and news cleared"
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification failed", logger.ErrorField(err))
	}
}
