package labelzoom

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

// LabelFunc receives one label's ZPL program during a streaming
// conversion. Returning a non-nil error stops the stream; that error is
// returned from the streaming call.
type LabelFunc func(label string) error

// Convert converts a PDF file to ZPL and returns every label in a single
// string, exactly as the server produced it. Best used for smaller
// documents.
func (c *Client) Convert(ctx context.Context, pdfPath string) (string, error) {
	data, err := readFile(pdfPath)
	if err != nil {
		return "", err
	}

	return c.convert(ctx, FormatPDF, bytes.NewReader(data))
}

// ConvertStreaming converts a PDF file to ZPL and calls onLabel once per
// label, in the order the server sends them. It returns after the whole
// response has been consumed. Best used for larger documents.
//
// Labels delivered before a failure are not retracted.
func (c *Client) ConvertStreaming(ctx context.Context, pdfPath string, onLabel LabelFunc) error {
	if onLabel == nil {
		return invalidArgument("onLabel callback cannot be nil")
	}

	data, err := readFile(pdfPath)
	if err != nil {
		return err
	}

	return c.stream(ctx, FormatPDF, bytes.NewReader(data), onLabel)
}

// ConvertFile converts a PDF or image file to ZPL. The source format is
// taken from the file extension.
func (c *Client) ConvertFile(ctx context.Context, path string) (string, error) {
	format, err := formatForFile(path)
	if err != nil {
		return "", err
	}

	data, err := readFile(path)
	if err != nil {
		return "", err
	}

	return c.convert(ctx, format, bytes.NewReader(data))
}

// ConvertFileStreaming is the streaming form of ConvertFile.
func (c *Client) ConvertFileStreaming(ctx context.Context, path string, onLabel LabelFunc) error {
	if onLabel == nil {
		return invalidArgument("onLabel callback cannot be nil")
	}

	format, err := formatForFile(path)
	if err != nil {
		return err
	}

	data, err := readFile(path)
	if err != nil {
		return err
	}

	return c.stream(ctx, format, bytes.NewReader(data), onLabel)
}

// ConvertData converts an in-memory document to ZPL.
func (c *Client) ConvertData(ctx context.Context, format Format, data []byte) (string, error) {
	if err := validateData(format, data); err != nil {
		return "", err
	}

	return c.convert(ctx, format, bytes.NewReader(data))
}

// ConvertDataStreaming is the streaming form of ConvertData.
func (c *Client) ConvertDataStreaming(ctx context.Context, format Format, data []byte, onLabel LabelFunc) error {
	if onLabel == nil {
		return invalidArgument("onLabel callback cannot be nil")
	}
	if err := validateData(format, data); err != nil {
		return err
	}

	return c.stream(ctx, format, bytes.NewReader(data), onLabel)
}

// ConvertReader converts a document read from r to ZPL. The reader is
// consumed by the HTTP transport; it is not closed.
func (c *Client) ConvertReader(ctx context.Context, format Format, r io.Reader) (string, error) {
	if err := validateReader(format, r); err != nil {
		return "", err
	}

	return c.convert(ctx, format, io.NopCloser(r))
}

// ConvertReaderStreaming is the streaming form of ConvertReader.
func (c *Client) ConvertReaderStreaming(ctx context.Context, format Format, r io.Reader, onLabel LabelFunc) error {
	if onLabel == nil {
		return invalidArgument("onLabel callback cannot be nil")
	}
	if err := validateReader(format, r); err != nil {
		return err
	}

	return c.stream(ctx, format, io.NopCloser(r), onLabel)
}

// convert performs a whole-document conversion. The client timeout, when
// set, covers the whole exchange including reading the body.
func (c *Client) convert(ctx context.Context, format Format, body io.Reader) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.doRequest(ctx, convertEndpoint, format, body)
	if err != nil {
		return "", err
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	zpl, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", readError(ctx, resp.StatusCode, "reading response", err)
	}

	return string(zpl), nil
}

// stream performs a streaming conversion, delivering each non-empty line
// of the response body to onLabel. The client timeout, when set, only
// bounds the wait for response headers; reading labels and running onLabel
// are limited by ctx alone.
func (c *Client) stream(ctx context.Context, format Format, body io.Reader, onLabel LabelFunc) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stopTimer := func() bool { return false }
	if c.timeout > 0 {
		timer := time.AfterFunc(c.timeout, func() { cancel(context.DeadlineExceeded) })
		stopTimer = timer.Stop
	}

	resp, err := c.doRequest(ctx, streamConvertEndpoint, format, body)
	stopTimer()
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	// The scanner reports atEOF on any read error, so an unterminated final
	// line is only a complete label when the body ended cleanly.
	unterminated := false
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := scanLabelLines(data, atEOF)
		unterminated = token != nil && advance == len(token)
		return advance, token, err
	})

	count := 0
	for {
		if ctx.Err() != nil {
			return readError(ctx, resp.StatusCode, "reading labels", ctx.Err())
		}
		if !scanner.Scan() {
			break
		}

		if unterminated && scanner.Err() != nil {
			break
		}

		label := scanner.Text()
		if label == "" {
			continue
		}
		if err := onLabel(label); err != nil {
			return fmt.Errorf("handling label %d: %w", count+1, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return readError(ctx, resp.StatusCode, "reading labels", err)
	}

	c.logger.DebugContext(ctx, "streaming conversion finished", "format", format.String(), "labels", count)

	return nil
}

// scanLabelLines is a bufio.SplitFunc that ends a line at "\n", "\r" or
// "\r\n". A final line without a terminator is returned at EOF.
func scanLabelLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// A "\r" at the end of the buffer may be followed by "\n".
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// readError wraps a response read failure, preferring the context's cause
// when the call was cancelled or timed out.
func readError(ctx context.Context, status int, what string, err error) error {
	if ctx.Err() != nil {
		err = context.Cause(ctx)
	}
	return &ConversionError{StatusCode: status, Err: fmt.Errorf("%s: %w", what, err)}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return data, nil
}

func formatForFile(path string) (Format, error) {
	if strings.TrimSpace(path) == "" {
		return 0, invalidArgument("file path cannot be empty")
	}
	return FormatFromPath(path)
}

func validateData(format Format, data []byte) error {
	if !format.valid() {
		return invalidArgument("unsupported format")
	}
	if len(data) == 0 {
		return invalidArgument("document data cannot be empty")
	}
	return nil
}

func validateReader(format Format, r io.Reader) error {
	if !format.valid() {
		return invalidArgument("unsupported format")
	}
	if r == nil {
		return invalidArgument("document reader cannot be nil")
	}
	return nil
}
