package wikidata

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newTestSink(t *testing.T, buf *bytes.Buffer) *sink {
	t.Helper()
	s, err := newSink(nopCloser{buf}, Metadata{Stream: "test", GeneratedBy: "test"}, 1)
	require.NoError(t, err)
	return s
}

func TestFilter_Run_RoutesEachKindToItsSink(t *testing.T) {
	dump := "[\n" +
		torontoEntityJSON + ",\n" +
		personEntityJSON + ",\n" +
		organizationEntityJSON + ",\n" +
		personNoPlaceEntityJSON + "\n" +
		"]\n"

	var geoBuf, personBuf, orgBuf bytes.Buffer
	sinks := Sinks{
		Geographic:   newTestSink(t, &geoBuf),
		Person:       newTestSink(t, &personBuf),
		Organization: newTestSink(t, &orgBuf),
	}

	f := New(Options{ChannelCapacity: 2}, nil)
	stats, err := f.Run(context.Background(), bufio.NewReader(strings.NewReader(dump)), sinks)
	require.NoError(t, err)

	require.NoError(t, sinks.Geographic.Close())
	require.NoError(t, sinks.Person.Close())
	require.NoError(t, sinks.Organization.Close())

	assert.Equal(t, int64(4), stats.TotalEntities)
	assert.Equal(t, int64(1), stats.Geographic)
	assert.Equal(t, int64(1), stats.Person)
	assert.Equal(t, int64(1), stats.Organization)
	assert.Equal(t, int64(0), stats.ParseErrors)

	assertGzipLineCount(t, geoBuf.Bytes(), 2) // metadata + 1 record
	assertGzipLineCount(t, personBuf.Bytes(), 2)
	assertGzipLineCount(t, orgBuf.Bytes(), 2)
}

func TestFilter_Run_CountsParseErrorsWithoutAborting(t *testing.T) {
	dump := "[\n" + torontoEntityJSON + ",\nnot-json,\n" + personEntityJSON + "\n]\n"

	var geoBuf, personBuf bytes.Buffer
	sinks := Sinks{
		Geographic: newTestSink(t, &geoBuf),
		Person:     newTestSink(t, &personBuf),
	}

	f := New(Options{}, nil)
	stats, err := f.Run(context.Background(), bufio.NewReader(strings.NewReader(dump)), sinks)
	require.NoError(t, err)
	require.NoError(t, sinks.Geographic.Close())
	require.NoError(t, sinks.Person.Close())

	assert.Equal(t, int64(1), stats.ParseErrors)
	assert.Equal(t, int64(1), stats.Geographic)
	assert.Equal(t, int64(1), stats.Person)
}

func assertGzipLineCount(t *testing.T, gzData []byte, want int) {
	t.Helper()
	gr, err := gzip.NewReader(bytes.NewReader(gzData))
	require.NoError(t, err)
	defer gr.Close()
	raw, err := io.ReadAll(gr)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, want)
}
