// Package metrics produces descriptive counts and histograms over
// already-fetched object collections. It issues no remote calls of its
// own; everything is computed from materialized records.
package metrics

import (
	"github.com/byteness/pasmigrate/collection"
	"github.com/byteness/pasmigrate/object"
)

// SecretSummary is a descriptive breakdown of a secret collection.
type SecretSummary struct {
	// Total is the number of secrets.
	Total int
	// ByType counts secrets per type (Text, File).
	ByType map[object.SecretType]int
	// ByFolder counts secrets per parent path.
	ByFolder map[string]int
	// WorkflowEnabled counts secrets requiring checkout approval.
	WorkflowEnabled int
	// TotalFileBytes is the exact byte sum of all file secrets whose
	// size parsed; Unparsed counts those that did not.
	TotalFileBytes int64
	// Unparsed counts file secrets with unparseable size strings.
	Unparsed int
}

// SummarizeSecrets computes a SecretSummary.
func SummarizeSecrets(secrets []*object.Secret) SecretSummary {
	s := SecretSummary{
		ByType:   make(map[object.SecretType]int),
		ByFolder: make(map[string]int),
	}
	for _, sec := range secrets {
		s.Total++
		s.ByType[sec.Type]++
		s.ByFolder[sec.ParentPath]++
		if sec.WorkflowEnabled {
			s.WorkflowEnabled++
		}
		if sec.Type == object.SecretFile && sec.FileSize != "" {
			n, err := object.ParseFileSize(sec.FileSize)
			if err != nil {
				s.Unparsed++
				continue
			}
			s.TotalFileBytes += n
		}
	}
	return s
}

// TotalFileSize sums the given size strings ("512 B", "2 KB") to exact
// bytes. Unparseable entries are reported in the second return.
func TotalFileSize(sizes []string) (int64, int) {
	var total int64
	var unparsed int
	for _, s := range sizes {
		n, err := object.ParseFileSize(s)
		if err != nil {
			unparsed++
			continue
		}
		total += n
	}
	return total, unparsed
}

// AccountSummary is a descriptive breakdown of an account collection.
type AccountSummary struct {
	// Total is the number of accounts.
	Total int
	// ByType counts accounts per subtype.
	ByType map[object.AccountType]int
	// ByHealth counts accounts per reported health state.
	ByHealth map[string]int
	// Managed counts tenant-managed accounts.
	Managed int
	// WorkflowEnabled counts accounts requiring checkout approval.
	WorkflowEnabled int
	// Vaulted counts accounts linked to an external vault.
	Vaulted int
}

// SummarizeAccounts computes an AccountSummary.
func SummarizeAccounts(accounts []*object.Account) AccountSummary {
	s := AccountSummary{
		ByType:   make(map[object.AccountType]int),
		ByHealth: make(map[string]int),
	}
	for _, a := range accounts {
		s.Total++
		s.ByType[a.Type]++
		s.ByHealth[a.Health]++
		if a.Managed {
			s.Managed++
		}
		if a.WorkflowEnabled {
			s.WorkflowEnabled++
		}
		if a.Vault != nil {
			s.Vaulted++
		}
	}
	return s
}

// SetSummary is a descriptive breakdown of a set collection.
type SetSummary struct {
	// Total is the number of sets.
	Total int
	// ByKind counts sets per collection flavor.
	ByKind map[object.SetKind]int
	// MemberHistogram buckets sets by resolved member count.
	MemberHistogram map[string]int
	// WithOwner counts sets whose owner inference found exactly one
	// owner.
	WithOwner int
}

// memberBucket buckets a member count for the histogram.
func memberBucket(n int) string {
	switch {
	case n == 0:
		return "0"
	case n <= 10:
		return "1-10"
	case n <= 100:
		return "11-100"
	default:
		return "100+"
	}
}

// SummarizeSets computes a SetSummary. Owner counting only considers sets
// whose PotentialOwner has been determined.
func SummarizeSets(sets []*object.Set) SetSummary {
	s := SetSummary{
		ByKind:          make(map[object.SetKind]int),
		MemberHistogram: make(map[string]int),
	}
	for _, set := range sets {
		s.Total++
		s.ByKind[set.Kind]++
		s.MemberHistogram[memberBucket(len(set.MemberIDs))]++
		if set.PotentialOwner != "" && set.PotentialOwner != collection.NoOwnersFound && set.PotentialOwner != collection.MultipleOwnersFound {
			s.WithOwner++
		}
	}
	return s
}
