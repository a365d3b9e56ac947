// Package encoder turns user-selected image files into inline base64
// attachments, enforcing the submission limits before anything is sent
// upstream.
package encoder

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	errx "github.com/genius-ai/assistant/internal/core/error"

	"github.com/genius-ai/assistant/internal/assistant/model"
)

const (
	// MaxAttachments is the most images a single submission may carry.
	MaxAttachments = 5
	// MaxAttachmentBytes caps each file before encoding.
	MaxAttachmentBytes = 5 * 1024 * 1024
)

// File is one user-selected file prior to encoding.
type File struct {
	Name     string
	MIMEType string
	Reader   io.Reader
}

// result carries one file's outcome back to its submission slot.
type result struct {
	attachment model.Attachment
	err        error
}

// EncodeFiles validates and encodes the selected files into attachments.
// Files are read concurrently; the returned sequence is always in
// submission order regardless of read completion order. Any violation
// rejects the entire batch: the caller never receives a partial set.
func EncodeFiles(ctx context.Context, files []File) ([]model.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > MaxAttachments {
		return nil, &errx.AttachmentLimitError{Count: len(files), Max: MaxAttachments}
	}
	for _, f := range files {
		if !strings.HasPrefix(f.MIMEType, "image/") {
			return nil, &errx.AttachmentTypeError{File: f.Name, MIMEType: f.MIMEType}
		}
	}

	results := make([]result, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			results[i] = encodeOne(ctx, f)
		}(i, f)
	}
	wg.Wait()

	// First failure in submission order wins; the batch is discarded.
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}

	attachments := make([]model.Attachment, len(results))
	for i, r := range results {
		attachments[i] = r.attachment
	}
	return attachments, nil
}

func encodeOne(ctx context.Context, f File) result {
	if err := ctx.Err(); err != nil {
		return result{err: err}
	}

	// Read one byte past the cap so an oversized file is detected without
	// buffering the whole thing.
	data, err := io.ReadAll(io.LimitReader(f.Reader, MaxAttachmentBytes+1))
	if err != nil {
		return result{err: fmt.Errorf("read attachment %q: %w", f.Name, err)}
	}
	if len(data) > MaxAttachmentBytes {
		return result{err: &errx.AttachmentTooLargeError{
			File: f.Name,
			Size: int64(len(data)),
			Max:  MaxAttachmentBytes,
		}}
	}

	return result{attachment: model.Attachment{
		MIMEType: f.MIMEType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}
