package main

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/minio"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// newBackend connects to the backend named by g.Backend.
func newBackend(ctx context.Context, g *globalFlags) (s3upload.Backend, error) {
	switch g.Backend {
	case "s3":
		var opts []s3types.ClientOption
		if g.Region != "" {
			opts = append(opts, s3upload.WithRegion(g.Region))
		}
		if g.Endpoint != "" {
			opts = append(opts, s3upload.WithEndpoint(g.Endpoint))
		}
		if g.PathStyle {
			opts = append(opts, s3upload.WithForcePathStyle(true))
		}
		b, err := s3upload.NewS3Backend(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "minio":
		b, err := minio.NewFromConfig(minio.Config{
			Endpoint:  g.Endpoint,
			AccessKey: g.AccessKey,
			SecretKey: g.SecretKey,
			Region:    g.Region,
			Secure:    !g.Insecure,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want s3 or minio)", g.Backend)
	}
}
