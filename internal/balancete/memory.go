package balancete

import (
	"context"
	"sort"
	"sync"
)

type lineKey struct {
	year    int
	period  string
	account string
}

type lineValue struct {
	title string
	value float64
}

// MemoryLineStore is an in-memory LineStore used in tests.
type MemoryLineStore struct {
	mu    sync.RWMutex
	lines map[lineKey]lineValue
}

// NewMemoryLineStore constructs an empty in-memory line store.
func NewMemoryLineStore() *MemoryLineStore {
	return &MemoryLineStore{lines: make(map[lineKey]lineValue)}
}

func (s *MemoryLineStore) ReplacePeriods(ctx context.Context, year int, periods []string, items []LineItem) error {
	replaced := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		replaced[p] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.lines {
		if k.year != year {
			continue
		}
		if _, ok := replaced[k.period]; ok {
			delete(s.lines, k)
		}
	}
	for _, item := range items {
		for period, value := range item.Values {
			if _, ok := replaced[period]; !ok {
				continue
			}
			s.lines[lineKey{year: year, period: period, account: item.AccountCode}] = lineValue{
				title: item.AccountTitle,
				value: value,
			}
		}
	}
	return nil
}

func (s *MemoryLineStore) LinesForYear(ctx context.Context, year int) ([]LineItem, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byAccount := make(map[string]*LineItem)
	periodSet := make(map[string]struct{})
	for k, v := range s.lines {
		if k.year != year {
			continue
		}
		periodSet[k.period] = struct{}{}
		item, ok := byAccount[k.account]
		if !ok {
			item = &LineItem{AccountCode: k.account, AccountTitle: v.title, Values: make(map[string]float64)}
			byAccount[k.account] = item
		}
		item.Values[k.period] = v.value
	}

	items := make([]LineItem, 0, len(byAccount))
	for _, item := range byAccount {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AccountCode < items[j].AccountCode })

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return items, periods, nil
}

func (s *MemoryLineStore) Periods(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for k := range s.lines {
		set[k.period] = struct{}{}
	}
	periods := make([]string, 0, len(set))
	for p := range set {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return periods, nil
}
