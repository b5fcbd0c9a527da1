package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nexuspro/nexus-render/internal/engine"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg supports every render stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			ffmpeg, err := engine.NewFFmpeg(engine.Config{Binary: cfg.FFmpegPath(), Logger: ctx.logger()})
			if err != nil {
				return err
			}
			caps, err := ffmpeg.Probe(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(caps); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderCapabilities(caps))
			}

			if !caps.Ready() {
				return fmt.Errorf("ffmpeg at %s cannot run every render stage", caps.Binary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderCapabilities(caps *engine.Capabilities) string {
	rows := [][]string{
		{"binary", caps.Binary},
		{"version", caps.Version},
		{"drawtext filter", status(caps.HasDrawText)},
		{"overlay filter", status(caps.HasOverlay)},
		{"libx264 encoder", status(caps.HasX264)},
		{"probed", humanize.RelTime(caps.ProbedAt, time.Now(), "ago", "from now")},
	}
	return renderTable([]string{"Check", "Result"}, rows, nil)
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "MISSING"
}
