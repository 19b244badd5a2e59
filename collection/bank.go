package collection

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/object"
)

// DefaultBankWorkers is the worker-pool size for bulk bank builds.
const DefaultBankWorkers = 12

// Bank is a precomputed {setID -> memberIDs} reverse index over the
// tenant's manual sets. The migration mapper scans it instead of issuing
// one IsMember call per candidate set. Safe for concurrent reads after
// Build completes.
type Bank struct {
	members map[string][]string
}

// MemberIDs returns the member ids recorded for a set. The boolean is
// false when the set is not in the bank (dynamic set, or failed fetch).
func (b *Bank) MemberIDs(setID string) ([]string, bool) {
	ids, ok := b.members[setID]
	return ids, ok
}

// Len returns the number of sets in the bank.
func (b *Bank) Len() int {
	return len(b.members)
}

// Contains reports whether the object id appears in the set's member list.
func (b *Bank) Contains(setID, objectID string) bool {
	for _, id := range b.members[setID] {
		if id == objectID {
			return true
		}
	}
	return false
}

// BankBuildReport summarizes a bulk bank build. One failed set does not
// abort the build; its error is recorded here and the set is left out of
// the bank.
type BankBuildReport struct {
	// Built is the number of sets fetched successfully.
	Built int
	// Skipped is the number of non-manual sets not eligible for banking.
	Skipped int
	// Failed maps set id to the fetch error for sets that could not be
	// banked.
	Failed map[string]error
}

// BuildBank precomputes the membership reverse index for every manual set,
// dispatching one member-id fetch per set over a bounded worker pool and
// collecting all results before returning. Name resolution is skipped; the
// bank holds raw ids only. workers <= 0 selects DefaultBankWorkers.
func BuildBank(ctx context.Context, caller api.Caller, sets []*object.Set, workers int) (*Bank, *BankBuildReport) {
	if workers <= 0 {
		workers = DefaultBankWorkers
	}

	report := &BankBuildReport{Failed: make(map[string]error)}
	bank := &Bank{members: make(map[string][]string)}

	eligible := make([]*object.Set, 0, len(sets))
	for _, s := range sets {
		if s.Kind == object.SetManualBucket {
			eligible = append(eligible, s)
		} else {
			report.Skipped++
		}
	}

	type result struct {
		setID string
		ids   []string
		err   error
	}

	jobs := make(chan *object.Set)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				ids, err := MemberIDs(ctx, caller, s)
				results <- result{setID: s.ID, ids: ids, err: err}
			}
		}()
	}

	go func() {
		for _, s := range eligible {
			jobs <- s
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			report.Failed[r.setID] = r.err
			continue
		}
		bank.members[r.setID] = r.ids
		report.Built++
	}

	return bank, report
}

// bankSnapshot is the on-disk shape of a saved bank.
type bankSnapshot struct {
	Members map[string][]string `json:"members"`
}

// Save serializes the bank wholesale to a snapshot file.
func (b *Bank) Save(path string) error {
	data, err := json.MarshalIndent(bankSnapshot{Members: b.members}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadBank restores a bank from a snapshot file written by Save.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap bankSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Members == nil {
		snap.Members = make(map[string][]string)
	}
	return &Bank{members: snap.Members}, nil
}
