package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// VectorWriter writes test vectors one per line:
//
//	<inputs>\t<outputs>\t<count>\t{ (g, 0) (a->b, 1) }
type VectorWriter struct {
	writer *bufio.Writer
	closer io.Closer
	count  int
}

// NewVectorWriter wraps w
func NewVectorWriter(w io.Writer) *VectorWriter {
	return &VectorWriter{writer: bufio.NewWriter(w)}
}

// CreateVectorFile creates filename and returns a writer for it
func CreateVectorFile(filename string) (*VectorWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	vw := NewVectorWriter(file)
	vw.closer = file
	return vw, nil
}

// WriteHeader writes the input and output order as comments
func (vw *VectorWriter) WriteHeader(c *circuit.Circuit) error {
	_, err := fmt.Fprintf(vw.writer, "# %s\n# inputs: %s\n# outputs: %s\n",
		c.Name, strings.Join(c.InputNames(), " "), strings.Join(c.OutputNames(), " "))
	return err
}

// WriteVector writes one vector line
func (vw *VectorWriter) WriteVector(inputs, outputs string, faults []string) error {
	vw.count++
	_, err := fmt.Fprintf(vw.writer, "%s\t%s\t%d\t{ %s }\n",
		inputs, outputs, len(faults), strings.Join(faults, " "))
	return err
}

// Count returns the number of vectors written
func (vw *VectorWriter) Count() int {
	return vw.count
}

// Close flushes buffered lines and closes the file, if the writer owns one
func (vw *VectorWriter) Close() error {
	if err := vw.writer.Flush(); err != nil {
		return err
	}
	if vw.closer != nil {
		return vw.closer.Close()
	}
	return nil
}
