package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

type rmFlags struct {
	Bucket string
	Key    string
}

// removal is printed after a successful rm.
type removal struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

func (c *cli) newRmCmd() *cobra.Command {
	f := &rmFlags{}
	cmd := &cobra.Command{
		Use:     "rm",
		Short:   "Remove a stored object",
		Example: `  s3upload rm --bucket media --key brand/logo.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runRm(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.Bucket, "bucket", c.env("BUCKET", ""), "Bucket holding the object")
	cmd.Flags().StringVar(&f.Key, "key", "", "Key of the object to remove")
	return cmd
}

func (c *cli) runRm(cmd *cobra.Command, f *rmFlags) error {
	if f.Bucket == "" || f.Key == "" {
		return fmt.Errorf("both --bucket and --key are required")
	}

	backend, err := c.newBackend(cmd.Context(), &c.flags)
	if err != nil {
		return err
	}
	storage, err := s3upload.New(backend,
		s3upload.WithBucket(option.Static(f.Bucket)),
		s3upload.WithLogger(c.logger(cmd)),
	)
	if err != nil {
		return err
	}

	if err := storage.RemoveFile(cmd.Context(), s3types.FileRef{Bucket: f.Bucket, Key: f.Key}); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), removal{Bucket: f.Bucket, Key: f.Key, Removed: true})
}
