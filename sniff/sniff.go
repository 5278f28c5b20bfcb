// Package sniff detects the content type of an upload from its first chunk.
//
// The chunk is drained from the original stream for inspection, so every
// detection hands back a replacement stream that replays the chunk and then
// forwards the rest of the original stream. At most one chunk is held in
// memory regardless of the file size.
package sniff

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// ChunkSize is the maximum number of leading bytes inspected.
const ChunkSize = pool.ChunkSize

// SVGContentType is reported for SVG documents.
const SVGContentType = "image/svg+xml"

// xmlContentType is reported for XML that mimetype took for SVG but that
// does not start like an SVG document.
const xmlContentType = "text/xml; charset=utf-8"

var (
	entityDeclaration = regexp.MustCompile(`(?i)\s*<!ENTITY\s(?:[^>"']|"[^"]*"|'[^']*')*>`)
	markupDeclaration = regexp.MustCompile(`(?i)\s*<!(?:ELEMENT|ATTLIST|NOTATION)\s(?:[^>"']|"[^"]*"|'[^']*')*>`)
	markupComment     = regexp.MustCompile(`(?s)<!--.*?-->`)
	xmlProlog         = regexp.MustCompile(`(?i)^\s*<\?xml\b`)

	// Prolog and doctype are optional; only the opening tag is required
	// because the chunk may end before the document does.
	svgDocument = regexp.MustCompile(
		`(?i)^\s*(?:<\?xml(?:[^>"']|"[^"]*"|'[^']*')*>\s*)?` +
			`(?:<!doctype\s+svg\b(?:[^>"']|"[^"]*"|'[^']*')*>\s*)?` +
			`<svg\b[^>]*>`,
	)
)

// Detect classifies chunk by its byte signature.
// Only XML or SVG signatures whose text passes IsSVG are reported as
// SVGContentType. mimetype flags any text containing an svg tag as SVG, so
// such chunks fall back to XML or to the parent text type.
// Unknown signatures yield s3types.DefaultContentType.
func Detect(chunk []byte) string {
	if len(chunk) == 0 {
		return s3types.DefaultContentType
	}

	mt := mimetype.Detect(chunk)
	if mt.Is(s3types.DefaultContentType) {
		return s3types.DefaultContentType
	}
	svg := mt.Is(SVGContentType)
	if svg || mt.Is("text/xml") || mt.Is("application/xml") {
		if IsSVG(chunk) {
			return SVGContentType
		}
		if svg {
			return notSVG(mt, chunk)
		}
	}
	return mt.String()
}

// notSVG reclassifies a chunk mimetype reported as SVG.
func notSVG(mt *mimetype.MIME, chunk []byte) string {
	if xmlProlog.Match(chunk) {
		return xmlContentType
	}
	if parent := mt.Parent(); parent != nil && !parent.Is(s3types.DefaultContentType) {
		return parent.String()
	}
	return "text/plain; charset=utf-8"
}

// IsSVG reports whether chunk starts like an SVG document once DTD
// declarations and comments are removed.
func IsSVG(chunk []byte) bool {
	text := entityDeclaration.ReplaceAll(chunk, nil)
	text = markupDeclaration.ReplaceAll(text, nil)
	text = markupComment.ReplaceAll(text, nil)
	return svgDocument.Match(text)
}

// Split reads the first chunk of r, classifies it and returns a stream that
// yields the exact bytes of r in their original order.
func Split(r io.Reader) (string, io.Reader, error) {
	buf := pool.GetChunk()
	defer pool.PutChunk(buf)

	n, err := io.ReadFull(r, buf)
	chunk := bytes.Clone(buf[:n])

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// The whole stream fit in the chunk.
		return Detect(chunk), bytes.NewReader(chunk), nil
	case err != nil:
		return "", nil, err
	}

	return Detect(chunk), io.MultiReader(bytes.NewReader(chunk), r), nil
}

// Sniff detects the content type of file and reports it through done along
// with the replacement stream. The file itself is left untouched.
func Sniff(ctx context.Context, file *s3types.File, done func(contentType string, stream io.Reader, err error)) {
	if err := ctx.Err(); err != nil {
		done("", nil, err)
		return
	}
	contentType, stream, err := Split(file.Stream())
	done(contentType, stream, err)
}

// AutoContentType returns a content type option that sniffs each file and
// installs the replacement stream on it, so the upload reads the full
// original content.
func AutoContentType() option.Option[string] {
	return option.Callback(func(ctx context.Context, file *s3types.File, done func(string, error)) {
		Sniff(ctx, file, func(contentType string, stream io.Reader, err error) {
			if err != nil {
				done("", err)
				return
			}
			file.ReplaceStream(stream)
			done(contentType, nil)
		})
	})
}

// DefaultContentType returns a content type option that always yields
// s3types.DefaultContentType.
func DefaultContentType() option.Option[string] {
	return option.Static(s3types.DefaultContentType)
}
