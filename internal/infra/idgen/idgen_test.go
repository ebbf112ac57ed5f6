package idgen_test

import (
	"sync"
	"testing"

	"github.com/boddenberg/openbanking-ledger-go/internal/infra/idgen"
)

func TestSequence_StartsAfterSeed(t *testing.T) {
	accounts := idgen.NewAccountSequence()
	cards := idgen.NewCardSequence()

	if got := accounts.Next(); got != "ACC1001" {
		t.Errorf("expected ACC1001, got %s", got)
	}
	if got := accounts.Next(); got != "ACC1002" {
		t.Errorf("expected ACC1002, got %s", got)
	}
	if got := cards.Next(); got != "CARD5001" {
		t.Errorf("expected CARD5001, got %s", got)
	}
}

func TestSequence_IndependentInstances(t *testing.T) {
	a := idgen.NewSequence("X", 0)
	b := idgen.NewSequence("X", 0)

	if a.Next() != b.Next() {
		t.Error("separate sequences with the same seed should produce the same first value")
	}
}

func TestSequence_ConcurrentNextIsUnique(t *testing.T) {
	seq := idgen.NewSequence("ACC", 1000)

	const workers = 50
	const perWorker = 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, seq.Next())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
