package perf

import (
	"context"
	"time"
)

type RequestPerf struct {
	Route  string
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func MakeNewRequestPerf(route string, method string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Method: method,
	}
}

func (rp *RequestPerf) StartBlock(category string, description string) {
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
}

func (rp *RequestPerf) EndBlock() bool {
	for i := len(rp.Blocks) - 1; i >= 0; i -= 1 {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

func (rp *RequestPerf) EndRequest() {
	for rp.EndBlock() {
	}
	rp.End = time.Now()
}

type perfContextKey struct{}

func AttachPerf(ctx context.Context, rp *RequestPerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, rp)
}

// Always returns a usable RequestPerf; a fresh throwaway one if the context
// has none, so callers can Start/End blocks unconditionally.
func ExtractPerf(ctx context.Context) *RequestPerf {
	rp, ok := ctx.Value(perfContextKey{}).(*RequestPerf)
	if !ok {
		rp = MakeNewRequestPerf("", "")
	}
	return rp
}
