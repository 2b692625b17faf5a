// Package labelzoom provides a client for the LabelZoom conversion API.
//
// The LabelZoom API converts PDF documents and raster images into ZPL
// (Zebra Programming Language) label data for Zebra label printers.
//
// Basic usage:
//
//	client, err := labelzoom.New(token)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	// Convert a whole document at once
//	zpl, err := client.Convert(ctx, "/path/to/document.pdf")
//
//	// Or receive labels one at a time as the server produces them
//	err = client.ConvertStreaming(ctx, "/path/to/large-document.pdf", func(label string) error {
//		return printer.Send(label)
//	})
//
// Errors fall into three groups that call for different handling:
//   - ErrInvalidArgument: malformed input, never worth retrying
//   - *FileError: the local source file could not be read
//   - *ConversionError: the remote call failed; see Temporary
//
// The client does not retry, cache or batch requests.
package labelzoom
