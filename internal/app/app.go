// Package app wires the service together: store, scheduler, conversation
// machine, gateway, and bus, with explicit startup and teardown.
package app

import (
	"context"
	"fmt"

	"postbot/internal/bus"
	"postbot/internal/config"
	"postbot/internal/conv"
	"postbot/internal/publish"
	"postbot/internal/sched"
	"postbot/internal/store"
)

// App is the assembled service. Construct with New, arm with Start, drive
// with Run, and tear down with Close.
type App struct {
	cfg     *config.Config
	bus     *bus.MessageBus
	store   *store.Store
	sched   *sched.Service
	machine *conv.Machine
	allowed map[int64]bool
}

// New opens the store and builds the rest of the service around it.
func New(cfg *config.Config) (*App, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open post store: %w", err)
	}

	msgBus := bus.NewMessageBus(0)
	gateway := publish.NewGateway(msgBus)
	scheduler := sched.NewService(st, gateway)
	machine := conv.NewMachine(st, scheduler, cfg.Telegram.ChannelID)

	allowed := make(map[int64]bool, len(cfg.Telegram.AllowedUserIDs))
	for _, id := range cfg.Telegram.AllowedUserIDs {
		allowed[id] = true
	}

	return &App{
		cfg:     cfg,
		bus:     msgBus,
		store:   st,
		sched:   scheduler,
		machine: machine,
		allowed: allowed,
	}, nil
}

// Bus returns the message bus the transport attaches to.
func (a *App) Bus() *bus.MessageBus { return a.bus }

// Start rebuilds the job table from the store and starts the scheduling
// timeline and the outbound dispatch loop.
func (a *App) Start(ctx context.Context) error {
	if err := a.sched.RecoverAll(ctx); err != nil {
		return err
	}
	a.sched.Start()
	go a.bus.DispatchOutbound(ctx)
	return nil
}

// Run consumes inbound events until ctx is cancelled. Events are handled in
// order on this goroutine; the scheduler fires on its own timeline.
func (a *App) Run(ctx context.Context) error {
	for {
		ev, err := a.bus.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		a.handleEvent(ctx, ev)
	}
}

// Close stops the scheduler and closes the store.
func (a *App) Close() error {
	a.sched.Stop()
	return a.store.Close()
}

func (a *App) authorized(userID int64) bool {
	return a.allowed[userID]
}
