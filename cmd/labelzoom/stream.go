package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newStreamCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <file>",
		Short: "Convert a document to ZPL, writing labels as they arrive",
		Long: `Stream uploads a PDF or image file and writes each label as soon as the
server produces it, one label per line. With --split-dir every label is
written to its own file (label-0001.zpl, label-0002.zpl, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			splitDir, _ := cmd.Flags().GetString("split-dir")
			if output != "" && splitDir != "" {
				return fmt.Errorf("--output and --split-dir cannot be used together")
			}
			if err := checkOutputDir(output); err != nil {
				return err
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			var sink labelSink
			switch {
			case splitDir != "":
				if err := os.MkdirAll(splitDir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", splitDir, err)
				}
				sink = &dirSink{dir: splitDir}
			case output != "":
				fs := &fileSink{path: output}
				defer fs.close()
				sink = fs
			default:
				sink = newWriterSink(cmd.OutOrStdout())
			}

			count := 0
			err = client.ConvertFileStreaming(cmd.Context(), args[0], func(label string) error {
				count++
				return sink.write(count, label)
			})
			if flushErr := sink.flush(); err == nil {
				err = flushErr
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d labels\n", count)

			return err
		},
	}

	cmd.Flags().StringP("output", "o", "", "write labels to this file instead of stdout")
	cmd.Flags().String("split-dir", "", "write each label to its own file in this directory")

	return cmd
}

// labelSink receives streamed labels in order. n starts at 1.
type labelSink interface {
	write(n int, label string) error
	flush() error
}

type writerSink struct {
	w *bufio.Writer
}

func newWriterSink(w io.Writer) *writerSink {
	return &writerSink{w: bufio.NewWriter(w)}
}

func (s *writerSink) write(_ int, label string) error {
	if _, err := s.w.WriteString(label); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	// Flush per label so downstream consumers see it immediately.
	return s.w.Flush()
}

func (s *writerSink) flush() error {
	return s.w.Flush()
}

type dirSink struct {
	dir string
}

func (s *dirSink) write(n int, label string) error {
	path := filepath.Join(s.dir, fmt.Sprintf("label-%04d.zpl", n))
	if err := os.WriteFile(path, []byte(label), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *dirSink) flush() error {
	return nil
}

// fileSink creates its file on the first label, so a conversion that
// fails before producing anything leaves no file behind.
type fileSink struct {
	path string
	f    *os.File
	w    *writerSink
}

func (s *fileSink) write(n int, label string) error {
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", s.path, err)
		}
		s.f = f
		s.w = newWriterSink(f)
	}
	return s.w.write(n, label)
}

func (s *fileSink) flush() error {
	if s.w == nil {
		return nil
	}
	return s.w.flush()
}

func (s *fileSink) close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
