package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shivamgupta214/outfox-health-assessment/internal/client"
	"github.com/shivamgupta214/outfox-health-assessment/internal/watcher"
	pkglog "github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

func newWatchCmd(a *app) *cobra.Command {
	settle := watcher.DefaultSettle

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Upload CSV files as they appear in a drop directory",
		Long: "Watch DIR and upload every CSV file that lands in it. Files whose name contains " +
			"\"rating\" go to the hospital rating upload, all others to the hospital data upload.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := client.NewUploadClient(a.cfg.API.BaseURL, a.cfg.HTTP.Timeout)
			w, err := watcher.NewDropWatcher(args[0], settle, dropUploader(uc, cmd.OutOrStdout()))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for CSV files (Ctrl+C to stop)\n", args[0])
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", settle, "How long a file must stay unchanged before upload.")
	return cmd
}

// dropUploader uploads each settled file and prints one line per file.
func dropUploader(uc *client.UploadClient, out io.Writer) watcher.Callback {
	var mu sync.Mutex
	return func(ctx context.Context, path string) {
		job := uploadJob{label: filepath.Base(path), path: endpointFor(path), file: path}
		msg, err := uploadFile(ctx, uc, job)

		l := pkglog.L()
		if err != nil {
			l.Error().Err(err).Str(pkglog.FieldFile, path).Msg("drop upload failed")
		} else {
			l.Info().Str(pkglog.FieldFile, path).Msg("drop upload complete")
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%s: %s\n", job.label, client.RenderUpload(msg, err))
	}
}

func endpointFor(path string) string {
	if strings.Contains(strings.ToLower(filepath.Base(path)), "rating") {
		return client.HospitalRatingPath
	}
	return client.HospitalDataPath
}
