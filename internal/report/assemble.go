package report

import (
	"errors"
	"fmt"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/stats"
)

// ErrPaginationDrift is returned when the final layout starts a section on
// another page than the dry run announced in the table of contents.
var ErrPaginationDrift = errors.New("section pages changed between layout passes")

// Contents order. The clause follows the summary without a page break.
var contentsOrder = []struct{ key, title string }{
	{claims.SectionSummary, stats.TitleSummary},
	{claims.SectionClause, stats.TitleClause},
	{claims.SectionHeadcount, stats.TitleHeadcount},
	{claims.SectionBeneficiaries, stats.TitleBeneficiaries},
	{claims.SectionMonthly, stats.TitleMonthly},
	{claims.SectionSpecialties, stats.TitleSpecialties},
	{claims.SectionProviders, stats.TitleProviders},
	{claims.SectionFamilies, stats.TitleFamilies},
}

// Assemble lays the parts out twice. The dry run learns the page each
// section starts on and the content page count; the final run builds the
// cover and the contents page from those numbers, lays the sections out
// again and numbers their footers. The two runs must agree.
func Assemble(g Geometry, cover Cover, parts []Part, footerName string) (*Document, error) {
	dry, starts := layoutSections(g, parts)
	total := len(dry)

	doc := &Document{
		Cover:      cover,
		Contents:   contents(starts),
		Total:      total,
		HeaderLogo: cover.Logo,
		Geometry:   g,
	}
	doc.Pages = append(doc.Pages,
		Page{Blocks: []Block{{Kind: BlockCover}}},
		Page{Blocks: []Block{{Kind: BlockContents, Text: ContentsTitle}}},
	)

	final, finalStarts := layoutSections(g, parts)
	if len(final) != total {
		return nil, fmt.Errorf("%w: %d content pages, expected %d", ErrPaginationDrift, len(final), total)
	}
	for _, e := range doc.Contents {
		if finalStarts[e.Key] != e.Page {
			return nil, fmt.Errorf("%w: %q starts on page %d, contents say %d", ErrPaginationDrift, e.Title, finalStarts[e.Key], e.Page)
		}
	}
	for i := range final {
		final[i].Footer = Footer(footerName, final[i].Number, total)
	}
	doc.Pages = append(doc.Pages, final...)
	return doc, nil
}

// contents lists the sections in report order with their start page.
// Sections without a page (absent from the report) are left out.
func contents(starts map[string]int) []ContentsEntry {
	var out []ContentsEntry
	for _, c := range contentsOrder {
		page := starts[c.key]
		if page == 0 {
			continue
		}
		out = append(out, ContentsEntry{Key: c.key, Title: c.title, Page: page})
	}
	return out
}

// Footer is the running footer of a content page.
func Footer(name string, page, total int) string {
	return fmt.Sprintf("Statistiques %s - Page %d / %d", name, page, total)
}
