package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/sniff"
)

// autoContentType selects content sniffing instead of a fixed type.
const autoContentType = "auto"

type putFlags struct {
	Bucket             string
	Key                string
	ContentType        string
	ACL                string
	StorageClass       string
	PartSize           int64
	Tagging            string
	CacheControl       string
	ContentDisposition string
	ContentEncoding    string
	SSE                string
	KMSKeyID           string
	Meta               []string
}

func (c *cli) newPutCmd() *cobra.Command {
	f := &putFlags{}
	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "Upload a file and print the stored object as JSON",
		Example: `  s3upload put logo.svg --bucket media --key brand/logo.svg
  s3upload put dump.tar --bucket backups --content-type application/x-tar --part-size 16777216
  s3upload put photo --bucket media --meta owner=alice --tagging team=media --backend minio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPut(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Bucket, "bucket", c.env("BUCKET", ""), "Destination bucket")
	fl.StringVar(&f.Key, "key", "", "Object key (default: random hex)")
	fl.StringVar(&f.ContentType, "content-type", autoContentType, "Content type, or auto to detect it from the file")
	fl.StringVar(&f.ACL, "acl", "", "Canned ACL (default: private)")
	fl.StringVar(&f.StorageClass, "storage-class", "", "Storage class (default: STANDARD)")
	fl.Int64Var(&f.PartSize, "part-size", 0, "Multipart chunk size in bytes (default: backend default)")
	fl.StringVar(&f.Tagging, "tagging", "", "URL-encoded tag set, e.g. a=1&b=2")
	fl.StringVar(&f.CacheControl, "cache-control", "", "Cache-Control header")
	fl.StringVar(&f.ContentDisposition, "content-disposition", "", "Content-Disposition header")
	fl.StringVar(&f.ContentEncoding, "content-encoding", "", "Content-Encoding header")
	fl.StringVar(&f.SSE, "sse", "", "Server-side encryption: AES256 or aws:kms")
	fl.StringVar(&f.KMSKeyID, "sse-kms-key-id", "", "KMS key id for aws:kms encryption")
	fl.StringArrayVar(&f.Meta, "meta", nil, "Object metadata key=value (repeatable)")
	return cmd
}

func (c *cli) runPut(cmd *cobra.Command, path string, f *putFlags) error {
	if err := validation.ValidateBucketName(f.Bucket); err != nil {
		return err
	}
	opts, err := f.storageOptions()
	if err != nil {
		return err
	}

	backend, err := c.newBackend(cmd.Context(), &c.flags)
	if err != nil {
		return err
	}
	storage, err := s3upload.New(backend, append(opts, s3upload.WithLogger(c.logger(cmd)))...)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := storage.HandleFile(cmd.Context(), s3types.NewFile(src, filepath.Base(path), ""))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// storageOptions turns the flags into static storage options.
// Unset flags keep the engine defaults.
func (f *putFlags) storageOptions() ([]s3upload.Option, error) {
	opts := []s3upload.Option{s3upload.WithBucket(option.Static(f.Bucket))}

	switch f.ContentType {
	case autoContentType:
		opts = append(opts, s3upload.WithContentType(sniff.AutoContentType()))
	case "":
	default:
		opts = append(opts, s3upload.WithContentType(option.Static(f.ContentType)))
	}

	if f.Key != "" {
		opts = append(opts, s3upload.WithKey(option.Static(f.Key)))
	}
	if f.ACL != "" {
		opts = append(opts, s3upload.WithACL(option.Static(s3types.ObjectACL(f.ACL))))
	}
	if f.StorageClass != "" {
		opts = append(opts, s3upload.WithStorageClass(option.Static(s3types.StorageClass(f.StorageClass))))
	}
	if f.PartSize != 0 {
		if err := validation.ValidatePartSize(f.PartSize); err != nil {
			return nil, err
		}
		opts = append(opts, s3upload.WithPartSize(option.Static(f.PartSize)))
	}
	if f.Tagging != "" {
		opts = append(opts, s3upload.WithTagging(option.Static(f.Tagging)))
	}
	if f.CacheControl != "" {
		opts = append(opts, s3upload.WithCacheControl(option.Static(f.CacheControl)))
	}
	if f.ContentDisposition != "" {
		opts = append(opts, s3upload.WithContentDisposition(option.Static(f.ContentDisposition)))
	}
	if f.ContentEncoding != "" {
		opts = append(opts, s3upload.WithContentEncoding(option.Static(f.ContentEncoding)))
	}
	if f.SSE != "" {
		opts = append(opts, s3upload.WithServerSideEncryption(option.Static(s3types.SSEType(f.SSE))))
	}
	if f.KMSKeyID != "" {
		opts = append(opts, s3upload.WithSSEKMSKeyID(option.Static(f.KMSKeyID)))
	}
	if len(f.Meta) > 0 {
		meta, err := parseMeta(f.Meta)
		if err != nil {
			return nil, err
		}
		opts = append(opts, s3upload.WithMetadata(option.Static(meta)))
	}
	return opts, nil
}

// parseMeta decodes repeated key=value pairs. Later pairs win.
func parseMeta(pairs []string) (map[string]string, error) {
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[k] = v
	}
	return meta, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
