package report

import (
	"github.com/klytics/santekit/internal/stats"
)

// BlockKind identifies what a page block draws.
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockTable
	BlockImage
	BlockCover
	BlockContents
)

// Block is one element of a page. Table blocks reference the rows of Table
// drawn on this page by index, so a table split across pages keeps its row
// numbering; Continued marks the fragments after the first.
type Block struct {
	Kind      BlockKind
	Text      string
	Table     *stats.Table
	Widths    []float64
	Rows      []int
	Continued bool
	Image     string
	Height    float64
}

// Page is one physical page. Number is the page number shown to the reader
// and is 0 on the cover and contents pages. Footer is empty on those pages.
type Page struct {
	Number int
	Blocks []Block
	Footer string
}

// Cover holds the cover page fields.
type Cover struct {
	Title         string
	Insurer       string
	Client        string
	InsurerPolicy string
	Period        string
	EditDate      string
	Logo          string
	InsurerLogo   string
	FooterLines   []string
}

// ContentsEntry is one line of the table of contents.
type ContentsEntry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Document is the assembled report: cover, contents page and content
// pages, in print order. Total counts content pages only.
type Document struct {
	Cover      Cover
	Contents   []ContentsEntry
	Pages      []Page
	Total      int
	HeaderLogo string
	Geometry   Geometry
}

// ContentsTitle is the heading of the table of contents.
const ContentsTitle = "SOMMAIRE"
