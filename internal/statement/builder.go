package statement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/demonstra-fin/demonstra/internal/balancete"
	"github.com/demonstra-fin/demonstra/internal/depara"
)

// classificationBucket accumulates the per-period totals of everything
// confirmed under one classification.
type classificationBucket struct {
	totals   map[string]float64
	accounts map[string]struct{}
}

// Build renders the DRE or BP for one year. Every imported account lands
// somewhere: confirmed entries roll up under their classification, pending
// or unknown accounts fall into the trailing "Não Classificado" section of
// the statement their account code root belongs to. Groups without data
// are omitted; periods without data for a row are zero-filled so every row
// carries the same columns.
func Build(kind Kind, items []balancete.LineItem, entries map[string]depara.Entry, periods []string) ([]Row, Structure) {
	groups := groupsFor(kind)
	if groups == nil {
		return nil, Structure{}
	}

	wanted := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		wanted[g.Name] = struct{}{}
	}

	buckets := make(map[string]*classificationBucket)
	extra := make(map[string][]string) // group -> confirmed non-canonical classifications
	var unresolved []balancete.LineItem

	for _, item := range items {
		entry, ok := entries[item.AccountCode]
		group, resolved := "", false
		if ok {
			group, resolved = resolveGroup(entry)
		}
		if !resolved {
			if rootStatement(item.AccountCode) == kind {
				unresolved = append(unresolved, item)
			}
			continue
		}
		if _, ok := wanted[group]; !ok {
			// Rolls into the other statement.
			continue
		}
		b := buckets[entry.Classification]
		if b == nil {
			b = &classificationBucket{totals: make(map[string]float64), accounts: make(map[string]struct{})}
			buckets[entry.Classification] = b
			if !canonical(groups, group, entry.Classification) {
				extra[group] = append(extra[group], entry.Classification)
			}
		}
		b.accounts[item.AccountCode] = struct{}{}
		for period, amount := range item.Values {
			b.totals[period] += amount
		}
	}

	var rows []Row
	var parents []string
	for _, g := range groups {
		labels := append([]string(nil), g.Classifications...)
		sort.Strings(extra[g.Name])
		labels = append(labels, extra[g.Name]...)

		var leaves []Row
		for _, label := range labels {
			b := buckets[label]
			if b == nil {
				continue
			}
			leaves = append(leaves, leafRow(label, label, b, periods))
		}
		if len(leaves) == 0 {
			continue
		}
		rows = append(rows, parentRow(g.Name, leaves, periods))
		rows = append(rows, leaves...)
		parents = append(parents, g.Name)
	}

	if len(unresolved) > 0 {
		sort.Slice(unresolved, func(i, j int) bool { return unresolved[i].AccountCode < unresolved[j].AccountCode })
		var leaves []Row
		for _, item := range unresolved {
			b := &classificationBucket{
				totals:   item.Values,
				accounts: map[string]struct{}{item.AccountCode: {}},
			}
			label := item.AccountCode
			if item.AccountTitle != "" {
				label = fmt.Sprintf("%s · %s", item.AccountCode, item.AccountTitle)
			}
			leaves = append(leaves, leafRow(label, "", b, periods))
		}
		rows = append(rows, parentRow(UnclassifiedGroup, leaves, periods))
		rows = append(rows, leaves...)
		parents = append(parents, UnclassifiedGroup)
	}

	return rows, Structure{Parents: parents}
}

var statementGroups = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, groups := range [][]depara.GroupDef{depara.DREGroups, depara.BPGroups} {
		for _, g := range groups {
			set[g.Name] = struct{}{}
		}
	}
	return set
}()

// resolveGroup returns the statement group a registry entry rolls into.
// Not resolved means the entry is pending, or it was confirmed with a group
// that matches no section of either statement; such accounts fall back to
// "Não Classificado" instead of disappearing.
func resolveGroup(entry depara.Entry) (string, bool) {
	if entry.Status != depara.StatusOK || entry.Classification == "" {
		return "", false
	}
	group := entry.Group
	if group == "" {
		if g, ok := depara.GroupFor(entry.Classification); ok {
			group = g.Name
		}
	}
	if _, ok := statementGroups[group]; !ok {
		return "", false
	}
	return group, true
}

func groupsFor(kind Kind) []depara.GroupDef {
	switch kind {
	case KindDRE:
		return depara.DREGroups
	case KindBP:
		return depara.BPGroups
	default:
		return nil
	}
}

// rootStatement routes an unresolved account to a statement by the root
// digit of its code: 1.x and 2.x are balance sheet accounts, everything
// else belongs to the result statement.
func rootStatement(code string) Kind {
	switch {
	case strings.HasPrefix(code, "1"), strings.HasPrefix(code, "2"):
		return KindBP
	default:
		return KindDRE
	}
}

func canonical(groups []depara.GroupDef, group, classification string) bool {
	for _, g := range groups {
		if g.Name != group {
			continue
		}
		for _, c := range g.Classifications {
			if c == classification {
				return true
			}
		}
	}
	return false
}

func leafRow(label, classification string, b *classificationBucket, periods []string) Row {
	values := make([]Cell, 0, len(periods)+1)
	var total float64
	for _, p := range periods {
		amount := b.totals[p]
		total += amount
		values = append(values, Cell{Period: p, Amount: amount})
	}
	values = append(values, Cell{Period: AccumulatedLabel, Amount: total})

	accounts := make([]string, 0, len(b.accounts))
	for code := range b.accounts {
		accounts = append(accounts, code)
	}
	sort.Strings(accounts)

	return Row{Label: label, Level: 1, Classification: classification, Accounts: accounts, Values: values}
}

func parentRow(label string, leaves []Row, periods []string) Row {
	values := make([]Cell, len(periods)+1)
	for i, p := range periods {
		values[i].Period = p
		for _, leaf := range leaves {
			values[i].Amount += leaf.Values[i].Amount
		}
	}
	values[len(periods)].Period = AccumulatedLabel
	for _, leaf := range leaves {
		values[len(periods)].Amount += leaf.Values[len(periods)].Amount
	}
	return Row{Label: label, Level: 0, IsParent: true, Values: values}
}
