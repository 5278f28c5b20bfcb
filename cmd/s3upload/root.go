package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
)

// envPrefix is prepended to every environment variable the CLI reads.
const envPrefix = "S3UPLOAD_"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	Backend   string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
	Insecure  bool
	Verbose   bool
}

// backendFactory builds the storage backend selected by the global flags.
type backendFactory func(ctx context.Context, g *globalFlags) (s3upload.Backend, error)

// cli carries the state shared by the command tree.
type cli struct {
	flags      globalFlags
	newBackend backendFactory
	getenv     func(string) string
}

func newRootCmd(newBackend backendFactory, getenv func(string) string) *cobra.Command {
	c := &cli{newBackend: newBackend, getenv: getenv}

	root := &cobra.Command{
		Use:   "s3upload",
		Short: "Stream files to S3-compatible object storage",
		Long: `s3upload streams local files to Amazon S3 or a MinIO server and prints
the stored object as JSON. Content types can be detected from the file bytes.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.Backend, "backend", c.env("BACKEND", "s3"), "Storage backend: s3 or minio")
	pf.StringVar(&c.flags.Region, "region", c.env("REGION", ""), "Storage region")
	pf.StringVar(&c.flags.Endpoint, "endpoint", c.env("ENDPOINT", ""), "Custom endpoint (required for minio)")
	pf.StringVar(&c.flags.AccessKey, "access-key", c.env("ACCESS_KEY", ""), "Access key (minio)")
	pf.StringVar(&c.flags.SecretKey, "secret-key", c.env("SECRET_KEY", ""), "Secret key (minio)")
	pf.BoolVar(&c.flags.PathStyle, "path-style", c.envBool("PATH_STYLE"), "Use path-style addressing (s3)")
	pf.BoolVar(&c.flags.Insecure, "insecure", c.envBool("INSECURE"), "Connect over plain HTTP (minio)")
	pf.BoolVarP(&c.flags.Verbose, "verbose", "v", c.envBool("VERBOSE"), "Enable debug logging on stderr")

	root.AddCommand(c.newPutCmd(), c.newRmCmd())
	return root
}

func (c *cli) env(name, fallback string) string {
	if v := c.getenv(envPrefix + name); v != "" {
		return v
	}
	return fallback
}

func (c *cli) envBool(name string) bool {
	v, err := strconv.ParseBool(c.getenv(envPrefix + name))
	return err == nil && v
}

// logger writes text logs to the command's stderr.
func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if c.flags.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
