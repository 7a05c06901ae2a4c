package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one data access of a memory trace.
type Record struct {
	Op   Op
	Addr uint64
	Size int
}

func (r Record) String() string {
	return fmt.Sprintf("%s %x,%d", r.Op, r.Addr, r.Size)
}

// ReadTrace parses a Valgrind lackey trace. Instruction fetches (I lines)
// and blank lines are skipped.
func ReadTrace(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "I") || strings.HasPrefix(text, "=") {
			continue
		}

		record, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", line, err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return records, nil
}

func parseRecord(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("malformed record %q", text)
	}

	var record Record
	switch fields[0] {
	case "L":
		record.Op = OpLoad
	case "S":
		record.Op = OpStore
	case "M":
		record.Op = OpModify
	default:
		return Record{}, fmt.Errorf("unknown operation %q", fields[0])
	}

	addr, size, ok := strings.Cut(fields[1], ",")
	if !ok {
		return Record{}, fmt.Errorf("missing size in %q", fields[1])
	}

	var err error
	record.Addr, err = strconv.ParseUint(addr, 16, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad address %q: %w", addr, err)
	}

	record.Size, err = strconv.Atoi(size)
	if err != nil {
		return Record{}, fmt.Errorf("bad size %q: %w", size, err)
	}

	return record, nil
}

// Replay applies every record to the cache. visit, when not nil, is called
// after each record with its result.
func (c *Cache) Replay(records []Record, visit func(Record, AccessResult)) {
	for _, record := range records {
		result := c.Access(record.Addr, record.Op)
		if visit != nil {
			visit(record, result)
		}
	}
}

// Describe renders a result the way verbose trace replays print it.
func Describe(record Record, result AccessResult) string {
	var b strings.Builder

	b.WriteString(record.String())
	if result.Hit {
		b.WriteString(" hit")
	} else {
		b.WriteString(" miss")
		if result.Eviction.Valid {
			b.WriteString(" eviction")
		}
	}

	if record.Op == OpModify {
		b.WriteString(" hit")
	}

	return b.String()
}
