package errx

import "fmt"

// Attachment validation errors. A single violation rejects the whole
// batch; no partial attachment set ever reaches the provider.

// AttachmentLimitError reports more selected files than the allowed count.
type AttachmentLimitError struct {
	Count int
	Max   int
}

func (e *AttachmentLimitError) Error() string {
	return fmt.Sprintf("too many attachments: %d selected, maximum %d", e.Count, e.Max)
}

// AttachmentTooLargeError reports a file exceeding the per-file size cap,
// named so the user knows which file to drop.
type AttachmentTooLargeError struct {
	File string
	Size int64
	Max  int64
}

func (e *AttachmentTooLargeError) Error() string {
	return fmt.Sprintf("attachment %q too large: %d bytes, maximum %d", e.File, e.Size, e.Max)
}

// AttachmentTypeError reports a file whose MIME type is not an image.
type AttachmentTypeError struct {
	File     string
	MIMEType string
}

func (e *AttachmentTypeError) Error() string {
	return fmt.Sprintf("attachment %q has unsupported type %q: only image/* is accepted", e.File, e.MIMEType)
}

// MalformedAttachmentError reports an attachment whose encoded payload
// could not be converted into the provider format.
type MalformedAttachmentError struct {
	Index int
	Err   error
}

func (e *MalformedAttachmentError) Error() string {
	return fmt.Sprintf("attachment %d has malformed payload: %v", e.Index, e.Err)
}

func (e *MalformedAttachmentError) Unwrap() error {
	return e.Err
}
