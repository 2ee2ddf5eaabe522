package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shivamgupta214/outfox-health-assessment/internal/client"
	pkglog "github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

type uploadJob struct {
	label string
	path  string
	file  string
}

type uploadResult struct {
	line string
	err  error
}

func newUploadCmd(a *app) *cobra.Command {
	var dataFile, ratingFile string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload hospital data and rating CSV files",
		Long: "Upload the inpatient charges CSV (--data) and/or the hospital ratings CSV (--rating). " +
			"When both are given they are uploaded concurrently.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var jobs []uploadJob
			if dataFile != "" {
				jobs = append(jobs, uploadJob{label: "hospital data", path: client.HospitalDataPath, file: dataFile})
			}
			if ratingFile != "" {
				jobs = append(jobs, uploadJob{label: "hospital rating", path: client.HospitalRatingPath, file: ratingFile})
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, client.RenderUpload("", client.ErrNoFile))
				return errReported
			}

			uc := client.NewUploadClient(a.cfg.API.BaseURL, a.cfg.HTTP.Timeout)
			results := runUploads(cmd.Context(), uc, jobs)

			failed := false
			for i, job := range jobs {
				res := results[i]
				if len(jobs) > 1 {
					fmt.Fprintf(out, "%s: %s\n", job.label, res.line)
				} else {
					fmt.Fprintln(out, res.line)
				}
				failed = failed || res.err != nil
			}
			if failed {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Inpatient charges CSV file.")
	cmd.Flags().StringVar(&ratingFile, "rating", "", "Hospital ratings CSV file.")
	return cmd
}

// runUploads uploads every job at once. A failed upload does not cancel the
// others; each outcome is reported on its own.
func runUploads(ctx context.Context, uc *client.UploadClient, jobs []uploadJob) []uploadResult {
	results := make([]uploadResult, len(jobs))
	l := pkglog.L()

	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			msg, err := uploadFile(ctx, uc, job)
			if err != nil {
				l.Error().Err(err).Str(pkglog.FieldFile, job.file).Msg("upload failed")
			} else {
				l.Info().Str(pkglog.FieldFile, job.file).Msg("upload complete")
			}
			results[i] = uploadResult{line: client.RenderUpload(msg, err), err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func uploadFile(ctx context.Context, uc *client.UploadClient, job uploadJob) (string, error) {
	f, err := os.Open(job.file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return uc.Upload(ctx, job.path, job.file, f)
}
