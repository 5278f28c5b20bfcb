package s3upload_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/sniff"
)

func ExampleStorage_HandleFile() {
	storage, err := s3upload.New(&testutil.MockBackend{},
		s3upload.WithBucket(option.Static("uploads")),
		s3upload.WithKey(option.Func(func(_ context.Context, f *s3types.File) (string, error) {
			return "avatars/" + f.OriginalName, nil
		})),
		s3upload.WithContentType(sniff.AutoContentType()),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	file := s3types.NewFile(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"/>`), "logo.svg", "")
	result, err := storage.HandleFile(context.Background(), file)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(result.Key, result.ContentType, result.Size)
	// Output: avatars/logo.svg image/svg+xml 41
}

func ExampleStorage_RemoveFile() {
	backend := &testutil.MockBackend{}
	storage, err := s3upload.New(backend, s3upload.WithBucket(option.Static("uploads")))
	if err != nil {
		fmt.Println(err)
		return
	}

	ref := s3types.FileRef{Bucket: "uploads", Key: "avatars/logo.svg"}
	if err := storage.RemoveFile(context.Background(), ref); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(backend.DeleteCalls())
	// Output: 1
}
