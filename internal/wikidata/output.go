package wikidata

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sync"
)

// Metadata is written as the first line of each output stream, ahead of any
// entity records.
type Metadata struct {
	Stream       string `json:"stream"`
	SourceDump   string `json:"sourceDump,omitempty"`
	GeneratedBy  string `json:"generatedBy"`
}

// sink buffers NDJSON-encoded records and flushes them through a gzip
// writer once the configured number of records has accumulated, mirroring the
// threshold-flush idiom the dump filter uses for its three output streams.
type sink struct {
	mu     sync.Mutex
	gz     *gzip.Writer
	w      *bufio.Writer
	buf    [][]byte
	limit  int
	closer io.Closer
}

// newSink wraps w with gzip+buffered-writer framing and writes the metadata
// header line immediately.
func newSink(w io.WriteCloser, meta Metadata, bufferSize int) (*sink, error) {
	gz := gzip.NewWriter(w)
	s := &sink{
		gz:     gz,
		w:      bufio.NewWriterSize(gz, 64*1024),
		limit:  bufferSize,
		closer: w,
	}
	line, err := json.Marshal(struct {
		Metadata Metadata `json:"metadata"`
	}{meta})
	if err != nil {
		return nil, err
	}
	if _, err := s.w.Write(line); err != nil {
		return nil, err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return nil, err
	}
	return s, nil
}

// write enqueues a record for output, flushing the buffer once it reaches
// the configured threshold.
func (s *sink) write(v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, line)
	if len(s.buf) >= s.limit {
		return s.flushLocked()
	}
	return nil
}

func (s *sink) flushLocked() error {
	for _, line := range s.buf {
		if _, err := s.w.Write(line); err != nil {
			return err
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	s.buf = s.buf[:0]
	return nil
}

// Close flushes any buffered records and closes the underlying writers.
func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.gz.Close(); err != nil {
		return err
	}
	return s.closer.Close()
}

// OpenFileSinks creates the three gzip NDJSON output files under dir
// (geographic.ndjson.gz, person.ndjson.gz, organization.ndjson.gz), each
// stamped with sourceDump in its metadata header. The returned close
// function flushes and closes every opened file and must be called once
// the Filter run completes, even on error.
func OpenFileSinks(dir, sourceDump string, bufferSize int) (Sinks, func() error, error) {
	var opened []*sink
	closeAll := func() error {
		var firstErr error
		for _, s := range opened {
			if err := s.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	open := func(stream, filename string) (*sink, error) {
		f, err := os.Create(dir + "/" + filename)
		if err != nil {
			return nil, fmt.Errorf("create %s sink: %w", stream, err)
		}
		s, err := newSink(f, Metadata{Stream: stream, SourceDump: sourceDump, GeneratedBy: "geokg-wikidata-filter"}, bufferSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("init %s sink: %w", stream, err)
		}
		opened = append(opened, s)
		return s, nil
	}

	geo, err := open("geographic", "geographic.ndjson.gz")
	if err != nil {
		return Sinks{}, closeAll, err
	}
	person, err := open("person", "person.ndjson.gz")
	if err != nil {
		return Sinks{}, closeAll, err
	}
	org, err := open("organization", "organization.ndjson.gz")
	if err != nil {
		return Sinks{}, closeAll, err
	}

	return Sinks{Geographic: geo, Person: person, Organization: org}, closeAll, nil
}
