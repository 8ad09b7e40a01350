package wikidata

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_BuffersUntilThresholdThenFlushes(t *testing.T) {
	var buf bytes.Buffer
	s, err := newSink(nopCloser{&buf}, Metadata{Stream: "geographic", GeneratedBy: "test"}, 3)
	require.NoError(t, err)

	require.NoError(t, s.write(map[string]string{"qid": "Q1"}))
	require.NoError(t, s.write(map[string]string{"qid": "Q2"}))
	// threshold is 3 records; only the metadata line has actually reached
	// the gzip writer so far, everything else is still buffered.
	require.NoError(t, s.write(map[string]string{"qid": "Q3"}))

	require.NoError(t, s.Close())

	gr, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	raw, err := io.ReadAll(gr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 4) // metadata + 3 records
	assert.Contains(t, lines[0], `"metadata"`)
	assert.Contains(t, lines[0], "geographic")
}

func TestSink_CloseFlushesPartialBuffer(t *testing.T) {
	var buf bytes.Buffer
	s, err := newSink(nopCloser{&buf}, Metadata{Stream: "person", GeneratedBy: "test"}, 1000)
	require.NoError(t, err)
	require.NoError(t, s.write(map[string]string{"qid": "Q42"}))
	require.NoError(t, s.Close())

	gr, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	raw, err := io.ReadAll(gr)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
}
