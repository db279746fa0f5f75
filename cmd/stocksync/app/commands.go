package app

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kirkidoo/Sync-Stock/internal/supplier"
	"github.com/Kirkidoo/Sync-Stock/pkg/constants"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
	"github.com/Kirkidoo/Sync-Stock/pkg/sync"
)

// newSyncCommand creates the sync command.
func (a *App) newSyncCommand() *cobra.Command {
	var (
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync [supplier]",
		Short: "Reconcile supplier stock into the catalog",
		Long: `Sync runs the reconciliation pipeline for the named supplier pair, or
for every configured pair when no name is given. Pairs run one after the
other as independent pipelines: a failed run does not stop the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			pairs, err := a.Pairs(name)
			if err != nil {
				return err
			}

			client, err := a.Catalog()
			if err != nil {
				return err
			}

			aborted := 0
			for _, pair := range pairs {
				srcCfg, err := pair.SourceConfig()
				if err != nil {
					return err
				}
				source, err := supplier.New(srcCfg)
				if err != nil {
					return err
				}

				runner := sync.NewRunner(client, source, client)
				summary, err := runner.Run(cmd.Context(), pair.LocationID,
					sync.WithDryRun(dryRun),
					sync.WithTimeout(timeout),
					sync.WithLogger(*a.logger),
				)
				if err != nil {
					aborted++
					a.logger.Error().Err(err).Str("supplier", pair.Name).Msg("Run aborted")
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}
					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s @ %s: %s\n", pair.Name, pair.LocationID, summary)
			}

			if aborted > 0 {
				return fmt.Errorf("%d of %d runs aborted", aborted, len(pairs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the update plan without writing to the catalog")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.SyncTimeout, "timeout per supplier run")

	return cmd
}

// newLocationsCommand creates the locations command.
func (a *App) newLocationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List catalog fulfillment locations",
		Long: `Locations lists the catalog's fulfillment locations with their IDs, to
help find the location a supplier pair should target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.Catalog()
			if err != nil {
				return err
			}

			locations, err := client.Locations(cmd.Context())
			if err != nil {
				return err
			}

			for _, location := range locations {
				status := "inactive"
				if location.IsActive {
					status = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", location.ID, location.Name, status)
			}
			return nil
		},
	}
}

// newVerifyCommand creates the verify command.
func (a *App) newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [supplier]",
		Short: "Probe supplier credentials",
		Long: `Verify checks each configured supplier's credentials with a harmless
probe request, without fetching stock or touching the catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			pairs, err := a.Pairs(name)
			if err != nil {
				return err
			}

			rejected := 0
			for _, pair := range pairs {
				srcCfg, err := pair.SourceConfig()
				if err != nil {
					return err
				}
				source, err := supplier.New(srcCfg)
				if err != nil {
					return err
				}

				switch err := source.Verify(cmd.Context()); {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: credentials valid\n", pair.Name)
				case errors.IsAuthFailed(err):
					rejected++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: credentials rejected\n", pair.Name)
				default:
					rejected++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: inconclusive (%v)\n", pair.Name, err)
				}
			}

			if rejected > 0 {
				return fmt.Errorf("%d of %d suppliers failed verification", rejected, len(pairs))
			}
			return nil
		},
	}
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stocksync version %s\n", a.version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", a.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", a.date)
			fmt.Fprintf(cmd.OutOrStdout(), "go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
