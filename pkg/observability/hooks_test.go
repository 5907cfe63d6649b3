package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "synthetic")
	p.OnBuildComplete(ctx, "synthetic", 30, 33, time.Millisecond, nil)
	p.OnLayoutStart(ctx, "layered", 30)
	p.OnLayoutComplete(ctx, "layered", 2, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	w := NoopWorkspaceHooks{}
	w.OnRebuild(ctx, "sample", 3, true, time.Second, nil)
	w.OnSelect(ctx, false)
	w.OnExport(ctx, 0, errors.New("no edges"))
	w.OnNotice(ctx, "error", 1)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Workspace().(NoopWorkspaceHooks); !ok {
		t.Error("Workspace() should return NoopWorkspaceHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customWorkspace := &testWorkspaceHooks{}
	SetWorkspaceHooks(customWorkspace)
	if Workspace() != customWorkspace {
		t.Error("SetWorkspaceHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Workspace().(NoopWorkspaceHooks); !ok {
		t.Error("Reset() should restore NoopWorkspaceHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	ws := &testWorkspaceHooks{}
	SetWorkspaceHooks(ws)
	SetWorkspaceHooks(nil)
	if Workspace() != ws {
		t.Error("SetWorkspaceHooks(nil) should be ignored")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &testWorkspaceHooks{}
	SetWorkspaceHooks(h)

	Workspace().OnRebuild(context.Background(), "synthetic", 1, false, 0, nil)
	Workspace().OnRebuild(context.Background(), "synthetic", 2, true, 0, nil)

	if h.rebuilds != 2 || h.stale != 1 {
		t.Errorf("rebuilds = %d, stale = %d; want 2, 1", h.rebuilds, h.stale)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }

type testWorkspaceHooks struct {
	NoopWorkspaceHooks
	rebuilds, stale int
}

func (h *testWorkspaceHooks) OnRebuild(_ context.Context, _ string, _ uint64, stale bool, _ time.Duration, _ error) {
	h.rebuilds++
	if stale {
		h.stale++
	}
}
