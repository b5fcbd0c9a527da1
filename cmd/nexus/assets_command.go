package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/assets"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List uploaded assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			list, err := assets.NewRepository(database.Conn()).ListAssets(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list assets: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assets uploaded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAssets(list))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of rows")
	return cmd
}

func newOutputsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List rendered outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			list, err := artifacts.NewRepository(database.Conn()).ListArtifacts(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list outputs: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No outputs rendered")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOutputs(list))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of rows")
	return cmd
}

func renderAssets(list []*assets.Asset) string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		dims := ""
		if a.Width > 0 && a.Height > 0 {
			dims = strconv.Itoa(a.Width) + "x" + strconv.Itoa(a.Height)
		}
		rows = append(rows, []string{
			a.ID,
			string(a.Kind),
			a.OriginalName,
			humanize.Bytes(uint64(a.Size)),
			dims,
			humanize.Time(a.CreatedAt),
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Name", "Size", "Dimensions", "Uploaded"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func renderOutputs(list []*artifacts.Artifact) string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			a.FileName(),
			a.SourceAssetID,
			humanize.Bytes(uint64(a.Size)),
			humanize.Time(a.CreatedAt),
		})
	}
	return renderTable(
		[]string{"File", "Source", "Size", "Rendered"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}
