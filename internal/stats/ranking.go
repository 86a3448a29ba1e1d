package stats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/formats/xlsx"
	"github.com/klytics/santekit/internal/normalize"
)

// ranked is one group of a top-N table.
type ranked struct {
	keys    []string
	count   int
	covered float64
}

// rank groups rows by key in order of first appearance, then sorts the
// groups by covered amount, descending. Ties keep their first-appearance
// order.
func rank(rows []claims.Claim, key func(claims.Claim) []string) []*ranked {
	index := make(map[string]*ranked)
	var groups []*ranked
	for _, c := range rows {
		keys := key(c)
		id := strings.Join(keys, "\x00")
		g, ok := index[id]
		if !ok {
			g = &ranked{keys: keys}
			index[id] = g
			groups = append(groups, g)
		}
		g.count++
		g.covered += sum(c.Covered)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].covered > groups[j].covered })
	return groups
}

// rankedTable renders ranked groups with a dense "Ordre" from 1 and each
// group's share of the covered total. limit > 0 keeps the first limit
// groups; the total row always covers every group and carries TotalLabel
// in the key column at index label.
func rankedTable(columns []string, widths []float64, groups []*ranked, limit, label int) *Table {
	var count int
	var covered float64
	for _, g := range groups {
		count += g.count
		covered += g.covered
	}

	t := &Table{Columns: columns, Widths: widths}
	shown := groups
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, g := range shown {
		cells := []string{strconv.Itoa(i + 1)}
		cells = append(cells, g.keys...)
		cells = append(cells,
			normalize.FormatCount(g.count),
			normalize.FormatAmount(g.covered),
			normalize.FormatPercent(normalize.Ratio(g.covered, covered)),
		)
		t.Rows = append(t.Rows, Row{Cells: cells})
	}

	total := []string{""}
	for i := range groups[0].keys {
		if i == label {
			total = append(total, TotalLabel)
		} else {
			total = append(total, "")
		}
	}
	total = append(total, normalize.FormatCount(count), normalize.FormatAmount(covered), "100%")
	t.Rows = append(t.Rows, Row{Cells: total, Total: true})
	return t
}

// ProvidersSection ranks (provider, city, commune) groups by covered
// amount.
func ProvidersSection(rows []claims.Claim, limit int) (*Section, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	groups := rank(rows, func(c claims.Claim) []string {
		return []string{c.Provider, c.City, c.Commune}
	})
	t := rankedTable(
		[]string{"Ordre", "PRESTATAIRE", "VILLE", "COMMUNE", "Nombre de Sinistres", "Couvert", "Proportion"},
		[]float64{15, 50, 20, 25, 20, 30, 30},
		groups, limit, 0,
	)
	return &Section{Key: claims.SectionProviders, Title: TitleProviders, Table: t}, nil
}

// FamiliesSection ranks families (principal card number and name) by
// covered amount. The two columns are located by header name, falling back
// to their usual positions with a warning.
func FamiliesSection(d *claims.Detail, limit int) (*Section, claims.Warnings, error) {
	var warns claims.Warnings
	if len(d.Claims) == 0 {
		return nil, nil, ErrNoData
	}
	card := claims.FamilyCardColumn.Resolve(d.Header)
	name := claims.FamilyNameColumn.Resolve(d.Header)
	for _, r := range []struct {
		res  claims.Resolution
		name string
	}{{card, claims.FamilyCardColumn.Name}, {name, claims.FamilyNameColumn.Name}} {
		if r.res.FellBack {
			warns.Add(claims.SectionFamilies, "column %q not found by name; using column %d", r.name, r.res.Index)
		}
	}
	if !card.Found() || !name.Found() {
		return nil, warns, ErrNoData
	}

	groups := rank(d.Claims, func(c claims.Claim) []string {
		return []string{xlsx.Cell(c.Raw, card.Index), xlsx.Cell(c.Raw, name.Index)}
	})
	t := rankedTable(
		[]string{"Ordre", "N° de Famille", "Assuré Principal", "Nombre d’actes", "Couvert", "Proportion"},
		[]float64{15, 30, 50, 30, 30, 30},
		groups, limit, 1,
	)
	return &Section{Key: claims.SectionFamilies, Title: TitleFamilies, Table: t}, warns, nil
}
