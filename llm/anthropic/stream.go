package anthropic

import (
	"context"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/trussdev/agentcore/llm"
)

// eventStreamer adapts an Anthropic Messages SSE stream into an llm.Stream,
// grounded on features/model/anthropic/stream.go's anthropicStreamer:
// same run-loop-in-a-goroutine-feeding-a-channel shape, same
// index-keyed tool-use-block buffering, trimmed to this module's flat
// Chunk type (no thinking/usage chunk kinds).
type eventStreamer struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream *ssestream.Stream[sdk.MessageStreamEventUnion]

	chunks chan llm.Chunk

	mu       sync.Mutex
	finalErr error
}

func newEventStreamer(ctx context.Context, stream *ssestream.Stream[sdk.MessageStreamEventUnion]) llm.Stream {
	cctx, cancel := context.WithCancel(ctx)
	s := &eventStreamer{
		ctx:    cctx,
		cancel: cancel,
		stream: stream,
		chunks: make(chan llm.Chunk, 32),
	}
	go s.run()
	return llm.Stream{
		Chunks: s.chunks,
		Err:    s.err,
		Close:  s.close,
	}
}

func (s *eventStreamer) run() {
	defer close(s.chunks)
	// toolNames tracks the tool name for each content-block index so a
	// later InputJSONDelta event (which carries no name) can still be
	// correlated with its ContentBlockStartEvent's tool_use.id.
	toolNames := make(map[int64]string)
	toolIDs := make(map[int64]string)

	for {
		select {
		case <-s.ctx.Done():
			s.setErr(s.ctx.Err())
			return
		default:
		}
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				s.setErr(err)
			}
			return
		}
		event := s.stream.Current()
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				toolNames[ev.Index] = toolUse.Name
				toolIDs[ev.Index] = toolUse.ID
				if !s.emit(llm.Chunk{
					Type:         llm.ChunkTypeToolCallStart,
					ToolCallID:   toolUse.ID,
					ToolCallName: toolUse.Name,
				}) {
					return
				}
			}
		case sdk.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text == "" {
					continue
				}
				if !s.emit(llm.Chunk{Type: llm.ChunkTypeText, Text: delta.Text}) {
					return
				}
			case sdk.InputJSONDelta:
				if delta.PartialJSON == "" {
					continue
				}
				id := toolIDs[ev.Index]
				if id == "" {
					continue
				}
				if !s.emit(llm.Chunk{
					Type:              llm.ChunkTypeToolCallDelta,
					ToolCallID:        id,
					ToolCallName:      toolNames[ev.Index],
					ToolCallArgsDelta: delta.PartialJSON,
				}) {
					return
				}
			}
		case sdk.ContentBlockStopEvent:
			delete(toolNames, ev.Index)
			delete(toolIDs, ev.Index)
		case sdk.MessageStopEvent:
			s.emit(llm.Chunk{Type: llm.ChunkTypeDone})
			return
		}
	}
}

func (s *eventStreamer) emit(chunk llm.Chunk) bool {
	select {
	case s.chunks <- chunk:
		return true
	case <-s.ctx.Done():
		s.setErr(s.ctx.Err())
		return false
	}
}

func (s *eventStreamer) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalErr == nil {
		s.finalErr = err
	}
}

func (s *eventStreamer) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalErr
}

func (s *eventStreamer) close() error {
	s.cancel()
	if s.stream == nil {
		return nil
	}
	return s.stream.Close()
}
