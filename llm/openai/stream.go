package openai

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/trussdev/agentcore/llm"
)

// chunkStreamer adapts an OpenAI Chat Completions delta stream into an
// llm.Stream. Grounded on llm/anthropic/stream.go's eventStreamer: the same
// run-loop-in-a-goroutine-feeding-a-channel shape and index-keyed
// tool-call-id buffering, adapted to go-openai's Recv-per-chunk stream
// (instead of Anthropic's typed SSE events) and its *int Index field
// (instead of content-block Index) for correlating a tool call's id with
// its later argument deltas.
type chunkStreamer struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream Stream

	chunks chan llm.Chunk

	mu       sync.Mutex
	finalErr error
}

func newChunkStreamer(ctx context.Context, stream Stream) llm.Stream {
	cctx, cancel := context.WithCancel(ctx)
	s := &chunkStreamer{
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

func (s *chunkStreamer) run() {
	defer close(s.chunks)
	// toolIDs tracks the tool_call id for each streamed index so an
	// argument-only delta chunk (which OpenAI does not repeat the id on)
	// can still be correlated with the ToolCallStart chunk already emitted
	// for that index.
	toolIDs := make(map[int]string)

	for {
		select {
		case <-s.ctx.Done():
			s.setErr(s.ctx.Err())
			return
		default:
		}
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.emit(llm.Chunk{Type: llm.ChunkTypeDone})
			return
		}
		if err != nil {
			s.setErr(err)
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta
		if delta.Content != "" {
			if !s.emit(llm.Chunk{Type: llm.ChunkTypeText, Text: delta.Content}) {
				return
			}
		}
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			if tc.ID != "" {
				toolIDs[idx] = tc.ID
				if !s.emit(llm.Chunk{
					Type:         llm.ChunkTypeToolCallStart,
					ToolCallID:   tc.ID,
					ToolCallName: tc.Function.Name,
				}) {
					return
				}
				if tc.Function.Arguments == "" {
					continue
				}
			}
			id := toolIDs[idx]
			if id == "" || tc.Function.Arguments == "" {
				continue
			}
			if !s.emit(llm.Chunk{
				Type:              llm.ChunkTypeToolCallDelta,
				ToolCallID:        id,
				ToolCallArgsDelta: tc.Function.Arguments,
			}) {
				return
			}
		}
		if resp.Choices[0].FinishReason != "" {
			s.emit(llm.Chunk{Type: llm.ChunkTypeDone})
			return
		}
	}
}

func (s *chunkStreamer) emit(chunk llm.Chunk) bool {
	select {
	case s.chunks <- chunk:
		return true
	case <-s.ctx.Done():
		s.setErr(s.ctx.Err())
		return false
	}
}

func (s *chunkStreamer) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalErr == nil {
		s.finalErr = err
	}
}

func (s *chunkStreamer) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalErr
}

func (s *chunkStreamer) close() error {
	s.cancel()
	if s.stream == nil {
		return nil
	}
	return s.stream.Close()
}
