package commands

import (
	"context"
	"fmt"
	"log/slog"
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/internal/components/chrono"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/db"
	"orderharvest/internal/snapshot"
	"orderharvest/internal/store"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	localeFlag *string
	debugFlag  *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file, a sibling .local file overrides it.")
	localeFlag = rootCmd.PersistentFlags().String("locale", "", "Storefront locale whose history is used (en or ja), defaults to the configured default locale.")
	debugFlag = rootCmd.PersistentFlags().Bool("debug", false, "Emit debug logs.")
}

var rootCmd = &cobra.Command{
	Use:           "orderharvest",
	Short:         "orderharvest collects the purchase history of a storefront account and lets you search and export it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// the default config name is searched for in parent directories too
		value, err := setup(cmd.Context(), !cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		session = value
		cmd.SetContext(globals.Set(cmd.Context(), value))
		return nil
	},
}

// session is closed once the command returns, whether it failed or not.
var session *globals.Value

func setup(ctx context.Context, searchConfig bool) (*globals.Value, error) {
	cfg, err := globals.LoadConfig(*configPath, searchConfig)
	if err != nil {
		return nil, err
	}
	locale, _, err := cfg.ResolveLocale(*localeFlag)
	if err != nil {
		return nil, err
	}

	telemetry.InitSlog(*debugFlag || cfg.Telemetry.Debug)
	var tel telemetry.API = telemetry.SlogAPI{Logger: slog.Default()}

	value := &globals.Value{
		Config: cfg,
		Locale: locale,
	}

	if cfg.Telemetry.OtlpMetricsEndpoint != "" {
		provider, err := telemetry.SetupMetrics(ctx, "orderharvest", cfg.Telemetry.OtlpMetricsEndpoint, cfg.Telemetry.OtlpHeaders)
		if err != nil {
			return nil, fmt.Errorf("setup metrics: %w", err)
		}
		value.OnClose(provider.Shutdown)
		tel, err = telemetry.NewOtelAPI(provider, tel)
		if err != nil {
			return nil, fmt.Errorf("setup metrics: %w", err)
		}
	}
	value.Tel = tel

	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	value.Clock = clock

	sqlDB, err := cfg.Database.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	value.OnClose(func(context.Context) error {
		return sqlDB.Close()
	})
	value.DB = sqlDB
	value.Qry = db.New(sqlDB)
	value.MakeTx = db.NewMakeTx(sqlDB)

	return value, nil
}

// openStore loads the history of the selected locale.
func openStore(ctx context.Context, value *globals.Value) (*store.Store, error) {
	_, locale, err := value.Config.ResolveLocale(value.Locale)
	if err != nil {
		return nil, err
	}
	slot := snapshot.NewDBSlot(locale.Slot, value.Qry, value.MakeTx, value.Clock, value.Tel)
	s := store.New(slot, value.Tel)
	_, err = s.Load(ctx)
	return s, err
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if session != nil {
		closeErr := session.Close(context.WithoutCancel(ctx))
		if err == nil {
			err = closeErr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}
