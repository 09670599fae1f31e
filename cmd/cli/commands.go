package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/marcelsud/artemis-inbox/artemis/client"
	"github.com/marcelsud/artemis-inbox/artemis/subscription"
	"github.com/marcelsud/artemis-inbox/config"
	"github.com/marcelsud/artemis-inbox/eventtypes"
	"github.com/marcelsud/artemis-inbox/internal/logger"
	"github.com/spf13/cobra"
)

// globalFlags override values loaded from the config file and environment
type globalFlags struct {
	configFile string
	baseURL    string
	appKey     string
	appSecret  string
	insecure   bool
	logLevel   string
}

func newRootCommand(out io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "artemis-cli",
		Short:         "Manage Artemis event subscriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&flags.baseURL, "baseUrl", "", "Platform base URL, e.g. https://10.0.0.1:443/artemis")
	pf.StringVar(&flags.appKey, "appKey", "", "Application key")
	pf.StringVar(&flags.appSecret, "appSecret", "", "Application secret")
	pf.BoolVar(&flags.insecure, "insecure", false, "Skip TLS certificate verification")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newSubscribeCommand(&flags),
		newViewCommand(&flags),
		newUnsubscribeCommand(&flags),
		newUnsubscribeAllCommand(&flags),
	)
	return root
}

// loadConfig merges the config file, environment and flags, flags winning
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("baseUrl") {
		cfg.Artemis.BaseURL = flags.baseURL
	}
	if changed("appKey") {
		cfg.Artemis.AppKey = flags.appKey
	}
	if changed("appSecret") {
		cfg.Artemis.AppSecret = flags.appSecret
	}
	if changed("insecure") {
		cfg.Artemis.InsecureSkipVerify = flags.insecure
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Artemis.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newService(cmd *cobra.Command, flags *globalFlags) (*subscription.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithWriter(cfg.Log.Level, cmd.ErrOrStderr())

	opts := []client.Option{client.WithLogger(log)}
	if cfg.Artemis.InsecureSkipVerify {
		opts = append(opts, client.WithInsecureSkipVerify())
	}
	c, err := client.New(cfg.Artemis.BaseURL, client.Credentials{
		AppKey:    cfg.Artemis.AppKey,
		AppSecret: cfg.Artemis.AppSecret,
	}, opts...)
	if err != nil {
		if errors.Is(err, client.ErrMissingCredentials) {
			return nil, nil, config.ErrMissingCredentials
		}
		return nil, nil, err
	}
	return subscription.NewService(c, log), cfg, nil
}

func newSubscribeCommand(flags *globalFlags) *cobra.Command {
	var (
		eventTypes []int64
		eventDest  string
	)
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe a callback URL to event types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("eventTypes") {
				eventTypes = cfg.Artemis.EventTypes
			}
			if !cmd.Flags().Changed("eventDest") {
				eventDest = cfg.Artemis.EventDest
			}
			if err := warnUnlabelled(cmd, cfg.Inbox.EventTypesFile, eventTypes); err != nil {
				return err
			}
			if err := s.Subscribe(cmd.Context(), eventTypes, eventDest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed %s to event types %v\n", eventDest, eventTypes)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&eventTypes, "eventTypes", nil, "Event type codes, comma separated")
	cmd.Flags().StringVar(&eventDest, "eventDest", "", "Callback URL, e.g. https://host/eventRcv")
	return cmd
}

// warnUnlabelled reports codes the label table does not know; the inbox would show them as unknown
func warnUnlabelled(cmd *cobra.Command, labelFile string, codes []int64) error {
	table := eventtypes.NewTable()
	if labelFile != "" {
		if err := eventtypes.NewLoader(table).Load(labelFile); err != nil {
			return err
		}
	}
	for _, code := range codes {
		if !table.Exists(code) {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: event type %d has no label\n", code)
		}
	}
	return nil
}

func newViewCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			view, err := s.View(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
}

func newUnsubscribeCommand(flags *globalFlags) *cobra.Command {
	var eventTypes []int64
	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Cancel the subscription of the given event types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			if err := s.Unsubscribe(cmd.Context(), eventTypes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unsubscribed event types %v\n", eventTypes)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&eventTypes, "eventTypes", nil, "Event type codes, comma separated")
	_ = cmd.MarkFlagRequired("eventTypes")
	return cmd
}

func newUnsubscribeAllCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe-all",
		Short: "Cancel every active event subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			result, err := s.UnsubscribeAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(result.EventTypes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no active subscriptions")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unsubscribed event types %v\n", result.EventTypes)
			return nil
		},
	}
}
