package client

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pdfier/internal/netx"
)

// kbPerPage is the rough size of one PDF page in KB.
const kbPerPage = 50

// FileMetadata reads the size of a result file with HEAD. Size is in KB
// rounded up and pages is ceil(KB/50). Any failure, or a missing size,
// yields 0 KB and one page along with the error.
func (c *HTTPClient) FileMetadata(ctx context.Context, rawURL string) (int64, int, error) {
	size, err := netx.ContentLength(ctx, c.hc, netx.WithScheme(rawURL))
	if err != nil {
		return 0, 1, err
	}
	if size < 0 {
		return 0, 1, nil
	}
	kb := (size + 1023) / 1024
	pages := int((kb + kbPerPage - 1) / kbPerPage)
	return kb, pages, nil
}

// Download streams the result file into w. Presigned URLs carry their own
// authorization, so no bearer token is attached.
func (c *HTTPClient) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	n, err := netx.Fetch(ctx, c.hc, netx.WithScheme(rawURL), w)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", netx.BaseName(rawURL), err)
	}
	return n, nil
}
