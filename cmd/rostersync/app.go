package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shelter-roster-sync/internal/config"
	"shelter-roster-sync/internal/domain/rostersync"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/ports/roster"
	"shelter-roster-sync/internal/router"
)

type app struct {
	out io.Writer
	log logger.Logger

	configFile string
	batchSize  int

	svcs       router.Services
	closeStore func()
}

type syncFlags struct {
	shelterID   string
	provider    string
	apiKey      string
	username    string
	password    string
	account     string
	allPhotos   bool
	primaryOnly bool
}

func newApp(out io.Writer) *app {
	return &app{out: out, log: logger.NewFromEnv(), closeStore: func() {}}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	defer func() { a.closeStore() }()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rostersync",
		Short: "Sincroniza el roster de animales de los shelters",
		Long: `rostersync trae el roster de ShelterLuv o ASM y lo reconcilia con el
store: inserta los nuevos, actualiza los cambiados y da de baja los que ya
no están. Usa la misma config que la API (env, .env o --config).`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "archivo de config (yaml/json/toml)")
	root.PersistentFlags().IntVar(&a.batchSize, "batch-size", 0, "máximo de operaciones por batch (pisa ROSTER_BATCH_SIZE)")

	root.AddCommand(a.syncCmd(), a.dispatchCmd())
	return root
}

// setup carga la config y arma los services antes de cualquier subcomando.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = a.batchSize
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	opts, closeStore, err := router.Open(cmd.Context(), *cfg, a.log)
	if err != nil {
		return err
	}
	a.closeStore = closeStore

	svcs, err := router.NewServices(opts)
	if err != nil {
		return err
	}
	a.svcs = svcs
	return nil
}

func (a *app) syncCmd() *cobra.Command {
	var f syncFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sincroniza un shelter",
		Long: `Corre un sync para un shelter. Sin credenciales en flags usa el
software y las credenciales guardados del shelter.`,
		Example: `  rostersync sync --shelter S1
  rostersync sync --shelter S1 --provider shelterluv --api-key KEY
  rostersync sync --shelter S2 --provider asm --username u --password p --account acc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSync(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.shelterID, "shelter", "", "ID del shelter")
	cmd.Flags().StringVar(&f.provider, "provider", "", "shelterluv | asm")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key de ShelterLuv")
	cmd.Flags().StringVar(&f.username, "username", "", "usuario de ASM")
	cmd.Flags().StringVar(&f.password, "password", "", "password de ASM")
	cmd.Flags().StringVar(&f.account, "account", "", "número de cuenta de ASM")
	cmd.Flags().BoolVar(&f.allPhotos, "all-photos", false, "trae todas las fotos (pisa el setting del shelter)")
	cmd.Flags().BoolVar(&f.primaryOnly, "primary-photo-only", false, "trae sólo la foto de portada (pisa el setting del shelter)")
	_ = cmd.MarkFlagRequired("shelter")
	cmd.MarkFlagsRequiredTogether("username", "password", "account")
	cmd.MarkFlagsMutuallyExclusive("api-key", "username")
	cmd.MarkFlagsMutuallyExclusive("all-photos", "primary-photo-only")
	return cmd
}

func (a *app) runSync(cmd *cobra.Command, f syncFlags) error {
	var t rostersync.Trigger
	if f.apiKey != "" || f.username != "" {
		t = rostersync.Trigger{
			ShelterID: f.shelterID,
			Provider:  f.provider,
			Credentials: roster.Credentials{
				APIKey:   f.apiKey,
				Username: f.username,
				Password: f.password,
				Account:  f.account,
			},
		}
		if t.Provider == "" {
			return fmt.Errorf("--provider is required when credentials are given")
		}
	} else {
		stored, err := a.svcs.Sync.TriggerFromStore(cmd.Context(), f.shelterID)
		if err != nil {
			return err
		}
		t = stored
	}
	switch {
	case f.allPhotos:
		v := false
		t.OnlyPrimaryPhoto = &v
	case f.primaryOnly:
		v := true
		t.OnlyPrimaryPhoto = &v
	}

	res, err := a.svcs.Sync.Run(cmd.Context(), t)
	if err != nil {
		return err
	}
	return a.printJSON(cmd, map[string]any{
		"runId":             res.RunID,
		"shelterId":         res.ShelterID,
		"provider":          res.Provider,
		"mode":              res.Mode,
		"fetched":           res.Fetched,
		"changes":           res.Changes,
		"flushes":           res.Flushes,
		"imagesDeleted":     res.ImagesDeleted,
		"credentialCleared": res.CredentialCleared,
	})
}

func (a *app) dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Sincroniza todos los shelters registrados",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := a.svcs.Dispatcher.DispatchAll(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.printJSON(cmd, rep); err != nil {
				return err
			}
			if len(rep.Failed) > 0 {
				return fmt.Errorf("%d of %d shelters failed", len(rep.Failed), rep.Total)
			}
			return nil
		},
	}
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
