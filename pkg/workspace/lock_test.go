package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/portflow/pkg/adapters/memory"
	"github.com/aretw0/portflow/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("network-%d", i)
		if _, err := mgr.Import(ctx, name, &domain.NetworkDefinition{}); err != nil {
			t.Fatalf("import %s: %v", name, err)
		}
		if err := mgr.Delete(ctx, name); err != nil {
			t.Fatalf("delete %s: %v", name, err)
		}
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", n)
	}
	if n := len(mgr.live); n != 0 {
		t.Errorf("%d live networks remaining after Delete", n)
	}
}
