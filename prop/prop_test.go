package prop_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mvskit/annot/model"
	"github.com/mvskit/annot/prop"
)

func emptyModel(t *testing.T, id string) *model.Model {
	t.Helper()
	m, err := model.New(id, 0, model.Columns{})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestObtainBuildsOnce(t *testing.T) {
	reg := prop.NewRegistry()
	m := emptyModel(t, "m")
	desc := prop.Descriptor{Name: "thing"}

	builds := 0
	build := func(ctx context.Context, m *model.Model) (any, error) {
		builds++
		return "value", nil
	}
	for i := 0; i < 3; i++ {
		v, err := reg.Obtain(context.Background(), desc, m, build)
		if err != nil {
			t.Fatal(err)
		}
		if v != "value" {
			t.Fatal("wrong value:", v)
		}
	}
	if builds != 1 {
		t.Error("built", builds, "times")
	}
	if v, ok := reg.Get(desc, m); !ok || v != "value" {
		t.Error("get after obtain:", v, ok)
	}
}

func TestGetWithoutObtain(t *testing.T) {
	reg := prop.NewRegistry()
	if _, ok := reg.Get(prop.Descriptor{Name: "thing"}, emptyModel(t, "m")); ok {
		t.Error("get must answer false for a property never obtained")
	}
}

func TestAttachDetachLifecycle(t *testing.T) {
	reg := prop.NewRegistry()
	m := emptyModel(t, "m")
	desc := prop.Descriptor{Name: "thing"}

	if err := reg.Attach(desc, m); err == nil {
		t.Error("attach before obtain must fail")
	}
	build := func(ctx context.Context, m *model.Model) (any, error) { return 7, nil }
	if _, err := reg.Obtain(context.Background(), desc, m, build); err != nil {
		t.Fatal(err)
	}
	if err := reg.Attach(desc, m); err != nil {
		t.Fatal(err)
	}
	// two holders now; one detach keeps the slot alive
	reg.Detach(desc, m)
	if _, ok := reg.Get(desc, m); !ok {
		t.Fatal("slot dropped while still referenced")
	}
	reg.Detach(desc, m)
	if _, ok := reg.Get(desc, m); ok {
		t.Error("slot must be gone after the last detach")
	}
	// detaching an empty slot is a no-op
	reg.Detach(desc, m)
}

func TestObtainErrorRemembered(t *testing.T) {
	reg := prop.NewRegistry()
	m := emptyModel(t, "m")
	desc := prop.Descriptor{Name: "thing"}

	boom := errors.New("boom")
	builds := 0
	build := func(ctx context.Context, m *model.Model) (any, error) {
		builds++
		return nil, boom
	}
	for i := 0; i < 2; i++ {
		if _, err := reg.Obtain(context.Background(), desc, m, build); !errors.Is(err, boom) {
			t.Fatal("wanted the build error, got", err)
		}
	}
	if builds != 1 {
		t.Error("a failed build must not be retried, built", builds, "times")
	}
	if _, ok := reg.Get(desc, m); ok {
		t.Error("a slot with no value and an error must read as absent")
	}
}

func TestObtainConcurrent(t *testing.T) {
	reg := prop.NewRegistry()
	m := emptyModel(t, "m")
	desc := prop.Descriptor{Name: "thing"}

	var mu sync.Mutex
	builds := 0
	release := make(chan struct{})
	build := func(ctx context.Context, m *model.Model) (any, error) {
		mu.Lock()
		builds++
		mu.Unlock()
		<-release
		return "value", nil
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := reg.Obtain(context.Background(), desc, m, build)
			if err != nil || v != "value" {
				t.Error("obtain:", v, err)
			}
		}()
	}
	close(release)
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if builds != 1 {
		t.Error("concurrent obtains ran", builds, "builds")
	}
}
