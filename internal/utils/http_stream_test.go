package utils

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// drain collects every payload the scanner produces until io.EOF.
func drain(t *testing.T, reader io.Reader) []string {
	t.Helper()
	scanner := NewSSEScanner(reader)
	var payloads []string
	for {
		data, err := scanner.Next()
		if err == io.EOF {
			return payloads
		}
		if err != nil {
			t.Fatalf("unexpected scanner error: %v", err)
		}
		payloads = append(payloads, data)
	}
}

func TestSSEScanner_BasicStream(t *testing.T) {
	stream := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n"
	payloads := drain(t, strings.NewReader(stream))

	if len(payloads) != 2 || payloads[0] != `{"a":1}` || payloads[1] != `{"b":2}` {
		t.Errorf("unexpected payloads: %#v", payloads)
	}
}

// TestSSEScanner_ChunkBoundariesAreInvisible verifies the decoding contract:
// chunk boundaries are transport artifacts, so reading the stream one byte
// at a time must yield exactly the same payloads as one large read.
func TestSSEScanner_ChunkBoundariesAreInvisible(t *testing.T) {
	stream := "data: {\"delta\":\"He\"}\ndata: {\"delta\":\"llo\"}\ndata: [DONE]\n"

	whole := drain(t, strings.NewReader(stream))
	byteAtATime := drain(t, iotest.OneByteReader(strings.NewReader(stream)))

	if len(whole) != 2 {
		t.Fatalf("expected 2 payloads, got %#v", whole)
	}
	if len(whole) != len(byteAtATime) {
		t.Fatalf("chunking changed the payload count: %#v vs %#v", whole, byteAtATime)
	}
	for i := range whole {
		if whole[i] != byteAtATime[i] {
			t.Errorf("payload %d differs: %q vs %q", i, whole[i], byteAtATime[i])
		}
	}
}

func TestSSEScanner_IgnoresNonDataLines(t *testing.T) {
	stream := "event: message_start\n" +
		": keep-alive comment\n" +
		"id: 42\n" +
		"data: {\"x\":1}\n" +
		"retry: 100\n"
	payloads := drain(t, strings.NewReader(stream))

	if len(payloads) != 1 || payloads[0] != `{"x":1}` {
		t.Errorf("expected only the data line, got %#v", payloads)
	}
}

// The data prefix must sit at column zero; SSE field names are never
// indented, so an indented line is noise, not a payload.
func TestSSEScanner_IndentedDataLineIgnored(t *testing.T) {
	stream := "  data: {\"x\":1}\n" +
		"\tdata: {\"x\":2}\n" +
		"data: {\"x\":3}\n"
	payloads := drain(t, strings.NewReader(stream))

	if len(payloads) != 1 || payloads[0] != `{"x":3}` {
		t.Errorf("expected only the column-zero data line, got %#v", payloads)
	}
}

func TestSSEScanner_OversizedLineFailsInsteadOfBuffering(t *testing.T) {
	// One newline-free line larger than the cap must error out rather than
	// accumulate in memory for the life of the stream.
	oversized := "data: " + strings.Repeat("a", maxSSELineSize+1)
	scanner := NewSSEScanner(strings.NewReader(oversized))

	_, err := scanner.Next()
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected error wrapping bufio.ErrTooLong, got %v", err)
	}

	// The scanner stays terminated after the failure.
	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after line-size failure, got %v", err)
	}
}

func TestSSEScanner_DoneSentinelStopsStream(t *testing.T) {
	stream := "data: {\"x\":1}\ndata: [DONE]\ndata: {\"x\":2}\n"
	payloads := drain(t, strings.NewReader(stream))

	if len(payloads) != 1 {
		t.Errorf("expected no payloads after [DONE], got %#v", payloads)
	}

	// Next keeps returning io.EOF after the sentinel.
	scanner := NewSSEScanner(strings.NewReader(stream))
	if _, err := scanner.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := scanner.Next(); err != io.EOF {
			t.Fatalf("expected io.EOF after sentinel, got %v", err)
		}
	}
}

func TestSSEScanner_TrailingCarriageReturnTrimmed(t *testing.T) {
	payloads := drain(t, strings.NewReader("data: {\"x\":1}\r\n"))
	if len(payloads) != 1 || payloads[0] != `{"x":1}` {
		t.Errorf("expected CRLF line ending to be handled, got %#v", payloads)
	}
}

func TestSSEScanner_UnterminatedFinalLine(t *testing.T) {
	// The last line may arrive without a trailing newline before EOF.
	payloads := drain(t, strings.NewReader("data: {\"x\":1}"))
	if len(payloads) != 1 || payloads[0] != `{"x":1}` {
		t.Errorf("expected final unterminated line to be delivered, got %#v", payloads)
	}
}

func TestSSEScanner_EmptyStream(t *testing.T) {
	if payloads := drain(t, strings.NewReader("")); len(payloads) != 0 {
		t.Errorf("expected no payloads from empty stream, got %#v", payloads)
	}
}
