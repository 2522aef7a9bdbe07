package registry

import (
	"context"
	"testing"
)

type constPlugin struct {
	name    string
	verdict Verdict
}

func (p constPlugin) Name() string { return p.name }

func (p constPlugin) Evaluate(ctx context.Context, relation, subject, object string) Verdict {
	return p.verdict
}

type panicPlugin struct{}

func (panicPlugin) Name() string { return "panicky" }

func (panicPlugin) Evaluate(ctx context.Context, relation, subject, object string) Verdict {
	panic("boom")
}

func TestPluginRegistryEvaluateDispatchesToRegisteredPlugin(t *testing.T) {
	pr := NewPluginRegistry()
	pr.Register(constPlugin{name: "math", verdict: Verdict{Truth: TruthTrueCertain, Value: 42}})

	v := pr.Evaluate(context.Background(), "math", "GREATER_THAN", "5", "3")
	if v.Truth != TruthTrueCertain || v.Value != 42 {
		t.Fatalf("expected the registered plugin's verdict, got %+v", v)
	}
}

func TestPluginRegistryEvaluateUnknownPluginDegradesToUnknown(t *testing.T) {
	pr := NewPluginRegistry()
	v := pr.Evaluate(context.Background(), "missing", "REL", "a", "b")
	if v.Truth != TruthUnknown || v.Error == nil {
		t.Fatalf("expected TruthUnknown with an error for an unregistered plugin, got %+v", v)
	}
}

func TestPluginRegistryEvaluateRecoversFromPanic(t *testing.T) {
	pr := NewPluginRegistry()
	pr.Register(panicPlugin{})

	v := pr.Evaluate(context.Background(), "panicky", "REL", "a", "b")
	if v.Truth != TruthUnknown || v.Error == nil {
		t.Fatalf("expected Evaluate to recover a plugin panic into TruthUnknown, got %+v", v)
	}
}
