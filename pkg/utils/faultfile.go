package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// FaultSpec is one fault read from a fault list, resolved to gate ids.
// Branch indexes the fan-out of Gate, -1 for the stem.
type FaultSpec struct {
	Gate    int
	Branch  int
	StuckAt int
}

// FaultRecord is one line of a fault list dump.
type FaultRecord struct {
	Site    string
	StuckAt int
	Note    string
}

// ReadFaultFile opens and parses a fault list.
func ReadFaultFile(filename string, c *circuit.Circuit) ([]FaultSpec, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return ParseFaultList(file, c)
}

// ParseFaultList parses lines like "g/0", "a->b/1" or "g/0/1", one site per
// line. Text after # is ignored.
func ParseFaultList(r io.Reader, c *circuit.Circuit) ([]FaultSpec, error) {
	var specs []FaultSpec

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed, err := ParseFaultString(line, c)
		if err != nil {
			return nil, atLine(err, lineNo)
		}
		specs = append(specs, parsed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return specs, nil
}

// ParseFaultString parses a single fault string like "net34/1" or
// "a->b/0". Listing both values ("g/0/1") yields two faults.
func ParseFaultString(faultStr string, c *circuit.Circuit) ([]FaultSpec, error) {
	parts := strings.Split(strings.TrimSpace(faultStr), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, faultListError("", "invalid fault string format: %s", faultStr)
	}

	site := strings.TrimSpace(parts[0])
	gate, branch, err := resolveSite(site, c)
	if err != nil {
		return nil, err
	}

	var specs []FaultSpec
	for _, p := range parts[1:] {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || (v != 0 && v != 1) {
			return nil, faultListError(site, "invalid fault type: %s", p)
		}
		specs = append(specs, FaultSpec{Gate: gate, Branch: branch, StuckAt: v})
	}
	return specs, nil
}

func resolveSite(site string, c *circuit.Circuit) (int, int, error) {
	from, to, isBranch := strings.Cut(site, "->")
	from = strings.TrimSpace(from)

	src, ok := c.Lookup(from)
	if !ok {
		return 0, 0, faultListError(from, "gate not found")
	}
	if !isBranch {
		return src.ID, -1, nil
	}

	to = strings.TrimSpace(to)
	dest, ok := c.Lookup(to)
	if !ok {
		return 0, 0, faultListError(to, "gate not found")
	}
	for i, b := range src.Fanout {
		if b.To == dest.ID {
			return src.ID, i, nil
		}
	}
	return 0, 0, faultListError(from, "does not drive %s", to)
}

func faultListError(gate, format string, args ...interface{}) error {
	return &circuit.NetlistError{
		Kind: circuit.ErrMalformedFaultList,
		Gate: gate,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// WriteFaultFile dumps records in fault list syntax so the file can be read
// back with ReadFaultFile.
func WriteFaultFile(filename string, records []FaultRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteFaultList(file, records); err != nil {
		return err
	}
	return file.Close()
}

// WriteFaultList writes one "site/value" line per record, followed by the
// note as a comment when there is one.
func WriteFaultList(w io.Writer, records []FaultRecord) error {
	writer := bufio.NewWriter(w)
	for _, r := range records {
		if r.Note != "" {
			fmt.Fprintf(writer, "%s/%d # %s\n", r.Site, r.StuckAt, r.Note)
		} else {
			fmt.Fprintf(writer, "%s/%d\n", r.Site, r.StuckAt)
		}
	}
	return writer.Flush()
}
