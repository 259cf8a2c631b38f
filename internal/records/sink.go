package records

import (
	"bufio"
	"context"
	"io"
)

// LineSink writes one fee per line.
type LineSink struct {
	w *bufio.Writer
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: bufio.NewWriter(w)}
}

func (s *LineSink) Write(_ context.Context, fee string) error {
	if _, err := s.w.WriteString(fee); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Flush writes any buffered lines to the underlying writer.
func (s *LineSink) Flush() error {
	return s.w.Flush()
}

// SliceSink collects fees in memory.
type SliceSink struct {
	Fees []string
}

func (s *SliceSink) Write(_ context.Context, fee string) error {
	s.Fees = append(s.Fees, fee)
	return nil
}
