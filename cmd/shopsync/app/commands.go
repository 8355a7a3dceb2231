package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/etsy"
)

// NewSyncCommand creates the catalog sync command.
func (a *App) NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the shop's listings into the local catalog",
		Long: `Sync pulls every listing page for the configured shop and persists each
listing as a snapshot in the local catalog. Reverse-index entries whose
listing no longer exists remotely are pruned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}
			synced, err := engine.SyncCatalog(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d listings\n", synced)
			return nil
		},
	}
}

// NewUploadCommand creates the workspace upload command.
func (a *App) NewUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [workspace]",
		Short: "Reconcile product folders and upload packaged zips",
		Long: `Upload scans the workspace for product folders (directories named
NAME_FILES), resolves each one to a shop listing, and uploads the
folder's packaged zip to that listing, replacing the previous zip
attachment. Stale or already-uploaded artifacts require confirmation.

The workspace defaults to the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			engine, err := a.Engine()
			if err != nil {
				return err
			}
			return engine.Run(cmd.Context(), root)
		},
	}
}

// NewReceiptsCommand creates the receipts command.
func (a *App) NewReceiptsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "receipts",
		Short: "Fetch the shop's receipts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.config.RequireShopID(); err != nil {
				return err
			}
			client, err := a.Client()
			if err != nil {
				return err
			}
			result, err := client.ShopReceipts(cmd.Context(), a.config.ShopID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

// NewPingCommand creates the connectivity check command.
func (a *App) NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check API connectivity with the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.Client()
			if err != nil {
				return err
			}
			result, err := client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

// NewStatusCommand creates the local status command. It never touches the
// network: it reports configuration, credential presence, and catalog size.
func (a *App) NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, credentials, and catalog state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "storage:  %s\n", a.Store().Path())
			fmt.Fprintf(out, "catalog:  %s\n", a.Catalog().Dir())

			shopID := a.config.ShopID
			if shopID == "" {
				shopID = "(not set)"
			}
			fmt.Fprintf(out, "shop id:  %s\n", shopID)

			creds, found, err := a.Store().Credentials(etsy.Provider)
			if err != nil {
				return err
			}
			switch {
			case !found:
				fmt.Fprintln(out, "account:  no stored credentials")
			case creds.UserID != "":
				fmt.Fprintf(out, "account:  user %s\n", creds.UserID)
			default:
				fmt.Fprintln(out, "account:  credentials present")
			}

			listings, err := a.Catalog().SelectKeys(catalog.NamespaceProducts)
			if err != nil {
				return err
			}
			claimed, err := a.Catalog().SelectKeys(catalog.NamespaceListingIndex)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "listings: %d cached, %d claimed by local folders\n", len(listings), len(claimed))
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
