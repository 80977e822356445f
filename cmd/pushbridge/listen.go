package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	pushbridge "github.com/Tap30/pushbridge-go"
	"github.com/Tap30/pushbridge-go/adapters"
)

type listenOptions struct {
	url            string
	dialTimeout    time.Duration
	subscribeAfter time.Duration
	presentation   []string
}

func newListenCmd(c *cli) *cobra.Command {
	opts := &listenOptions{}
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Connect to a bridge as a host and log its events",
		Long: `Listen registers the event receiver right away, asks for the notification
permission, enables remote notifications and subscribes to every event after
--subscribe-after. Events received before that are replayed on subscribe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.listen(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.url, "url", "ws://localhost:8080/bridge", "bridge websocket URL")
	flags.DurationVar(&opts.dialTimeout, "dial-timeout", 30*time.Second, "how long to keep retrying the connection")
	flags.DurationVar(&opts.subscribeAfter, "subscribe-after", 0, "delay before subscribing to events")
	flags.StringSliceVar(&opts.presentation, "presentation", []string{"banner", "sound"}, "iOS presentation options")

	return cmd
}

func (c *cli) listen(ctx context.Context, opts *listenOptions) error {
	logger := adapters.NewZerologLoggerAdapter(c.logger)

	transport, err := adapters.DialWebSocketTransport(ctx, opts.url, adapters.WebSocketOptions{
		DialTimeout: opts.dialTimeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer transport.Close()
	c.logger.Info().Str("url", opts.url).Msg("Connected to bridge")

	facade, err := pushbridge.NewFacade(pushbridge.FacadeConfig{Transport: transport, LoggerAdapter: logger})
	if err != nil {
		return err
	}
	if err := facade.Start(ctx); err != nil {
		return err
	}

	if err := c.prepare(ctx, facade, opts); err != nil {
		return err
	}

	select {
	case <-time.After(opts.subscribeAfter):
	case <-ctx.Done():
		return nil
	}
	c.logger.Info().Int("buffered", facade.PendingEvents()).Msg("Subscribing to events")
	for _, name := range adapters.EventNames {
		facade.Subscribe(name, c.logEvent(name))
	}

	select {
	case <-ctx.Done():
		return nil
	case <-transport.Done():
		return errors.New("bridge connection closed")
	}
}

func (c *cli) prepare(ctx context.Context, facade *pushbridge.Facade, opts *listenOptions) error {
	if err := facade.SetPresentationOptions(ctx, opts.presentation); err != nil {
		return err
	}

	status, err := facade.CheckPermissionStatus(ctx)
	if err != nil {
		return err
	}
	if status == pushbridge.PermissionDenied {
		if show, err := facade.ShouldShowPermissionRationale(ctx); err == nil && show {
			rationale := pushbridge.Rationale{Message: "Notifications keep you up to date."}
			if err := facade.PresentPermissionRationale(ctx, rationale); err != nil {
				c.logger.Warn().Err(err).Msg("Rationale not shown")
			}
		}
		if status, err = facade.RequestPermission(ctx); err != nil {
			return err
		}
	}
	c.logger.Info().Str("status", string(status)).Msg("Notification permission")

	if err := facade.EnableRemoteNotifications(ctx); err != nil {
		return err
	}
	allowed, err := facade.AllowedUI(ctx)
	if err != nil {
		return err
	}
	c.logger.Info().Bool("allowedUI", allowed).Msg("Remote notifications enabled")
	return nil
}

func (c *cli) logEvent(name adapters.EventName) pushbridge.EventCallback {
	return func(data pushbridge.Payload) {
		event := c.logger.Info().Str("event", string(name))
		if data != nil {
			if raw, err := adapters.Marshal(data); err == nil {
				event = event.RawJSON("data", raw)
			}
		}
		event.Msg("Event received")
	}
}
