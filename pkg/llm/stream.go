package llm

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/pkg/errors"
)

// ChunkStream yields text chunks of a model reply as they arrive.
type ChunkStream interface {
	Next() bool
	Chunk() string
	Err() error
	Close() error
}

// Stream adapts an SDK event stream to a ChunkStream of text deltas.
type Stream struct {
	events *ssestream.Stream[anthropic.MessageStreamEventUnion]
	chunk  string
	err    error
	done   bool
}

func newStream(events *ssestream.Stream[anthropic.MessageStreamEventUnion]) (s *Stream) {
	s = &Stream{events: events}
	if events == nil {
		s.err = errors.New("streaming response not available")
		s.done = true
	}
	return s
}

// Next advances to the next non-empty text chunk.
func (s *Stream) Next() (ok bool) {
	if s.done {
		return ok
	}

	for s.events.Next() {
		event := s.events.Current()
		delta, isDelta := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !isDelta {
			continue
		}
		text := delta.Delta.AsTextDelta().Text
		if text == "" {
			continue
		}
		s.chunk = text
		ok = true
		return ok
	}

	s.done = true
	if err := s.events.Err(); err != nil {
		s.err = errors.Wrap(err, "stream failed")
	}
	return ok
}

// Chunk returns the text delivered by the last successful Next.
func (s *Stream) Chunk() (chunk string) {
	chunk = s.chunk
	return chunk
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() (err error) {
	err = s.err
	return err
}

// Close releases the underlying connection.
func (s *Stream) Close() (err error) {
	if s.events == nil {
		return err
	}
	err = s.events.Close()
	return err
}

// Collect drains a stream, calling onChunk with each chunk, and returns the
// accumulated text. The stream is closed before Collect returns.
func Collect(stream ChunkStream, onChunk func(chunk string)) (text string, err error) {
	defer func() {
		_ = stream.Close()
	}()

	var buf []byte
	for stream.Next() {
		chunk := stream.Chunk()
		buf = append(buf, chunk...)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	text = string(buf)
	err = stream.Err()
	return text, err
}
