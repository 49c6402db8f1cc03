// Package docx writes minimal WordprocessingML packages containing headings,
// paragraphs, grid tables and inline images. Output is deterministic: equal
// documents produce byte-identical packages.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	EMUPerInch  = 914400
	EMUPerPixel = 9525

	// MaxImageWidthEMU is the widest an inline image is allowed to be.
	MaxImageWidthEMU = 6 * EMUPerInch

	// usable page width for a letter page with one inch margins, in twips.
	textWidthTwips = 9360
)

// zipModTime is stamped on every zip entry, the earliest time the format supports.
var zipModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Block is a single body element of a document.
type Block interface {
	isBlock()
}

type Heading struct {
	Text string
	// Level 0 is the document title, 1 and up are section headings.
	Level int
}

type Paragraph struct {
	Text string
}

type Table struct {
	Header []string
	Rows   [][]string
}

type Image struct {
	Name        string
	ContentType string
	Data        []byte
	WidthEMU    int64
	HeightEMU   int64

	ext string
}

func (Heading) isBlock()   {}
func (Paragraph) isBlock() {}
func (Table) isBlock()     {}
func (Image) isBlock()     {}

var imageExtensions = map[string]string{
	"image/png":      "png",
	"image/jpeg":     "jpeg",
	"image/jpg":      "jpeg",
	"image/pjpeg":    "jpeg",
	"image/gif":      "gif",
	"image/bmp":      "bmp",
	"image/x-ms-bmp": "bmp",
	"image/tiff":     "tiff",
}

var extensionContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// SupportsImage reports whether images of the media type can be embedded.
func SupportsImage(contentType string) bool {
	_, ok := imageExtensions[normalizeContentType(contentType)]
	return ok
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	return ct
}

// Document is an ordered list of blocks plus package metadata.
type Document struct {
	Title   string
	Creator string

	blocks []Block
}

func New() *Document {
	return &Document{}
}

func (d *Document) AddHeading(text string, level int) {
	d.blocks = append(d.blocks, Heading{Text: text, Level: level})
}

func (d *Document) AddParagraph(text string) {
	d.blocks = append(d.blocks, Paragraph{Text: text})
}

// AddTable adds a grid table with a header row. Rows shorter than the header
// are padded with empty cells, longer rows are truncated.
func (d *Document) AddTable(header []string, rows [][]string) {
	t := Table{
		Header: append([]string(nil), header...),
		Rows:   make([][]string, len(rows)),
	}

	for i, r := range rows {
		cells := make([]string, len(header))
		copy(cells, r)
		t.Rows[i] = cells
	}

	d.blocks = append(d.blocks, t)
}

// AddImage adds an inline image scaled to at most MaxImageWidthEMU wide.
func (d *Document) AddImage(name, contentType string, data []byte) error {
	ext, ok := imageExtensions[normalizeContentType(contentType)]
	if !ok {
		return fmt.Errorf("unsupported image type %q", contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image %s: %w", name, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("image %s has no extent", name)
	}

	w, h := ScaleToWidth(int64(cfg.Width), int64(cfg.Height), MaxImageWidthEMU)

	d.blocks = append(d.blocks, Image{
		Name:        name,
		ContentType: extensionContentTypes[ext],
		Data:        data,
		WidthEMU:    w,
		HeightEMU:   h,
		ext:         ext,
	})

	return nil
}

// ScaleToWidth converts a pixel extent to EMUs, shrinking it proportionally
// when it is wider than maxWidth.
// Extents that do not fit in an int64 saturate at math.MaxInt64.
func ScaleToWidth(widthPx, heightPx, maxWidth int64) (int64, int64) {
	if widthPx <= 0 || heightPx <= 0 {
		return 0, 0
	}

	if widthPx <= maxWidth/EMUPerPixel {
		return widthPx * EMUPerPixel, mulDiv(heightPx, EMUPerPixel, 1)
	}

	return maxWidth, mulDiv(heightPx, maxWidth, widthPx)
}

// mulDiv returns a*b/c without intermediate overflow.
func mulDiv(a, b, c int64) int64 {
	r := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	r.Quo(r, big.NewInt(c))

	if !r.IsInt64() {
		return math.MaxInt64
	}

	return r.Int64()
}

// Blocks returns the document body in order.
func (d *Document) Blocks() []Block {
	blocks := make([]Block, len(d.blocks))
	copy(blocks, d.blocks)

	return blocks
}

// Bytes serializes the document into a .docx package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	_, err := d.WriteTo(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, p := range d.parts() {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: zipModTime,
		})
		if err != nil {
			return cw.n, fmt.Errorf("creating part %s: %w", p.name, err)
		}

		_, err = fw.Write(p.data)
		if err != nil {
			return cw.n, fmt.Errorf("writing part %s: %w", p.name, err)
		}
	}

	err := zw.Close()
	if err != nil {
		return cw.n, fmt.Errorf("closing package: %w", err)
	}

	return cw.n, nil
}

type part struct {
	name string
	data []byte
}

func (d *Document) parts() []part {
	images := d.images()

	parts := []part{
		{name: "[Content_Types].xml", data: contentTypesXML(images)},
		{name: "_rels/.rels", data: []byte(rootRelsXML)},
		{name: "docProps/core.xml", data: corePropsXML(d.Title, d.Creator)},
		{name: "word/document.xml", data: d.documentXML()},
		{name: "word/styles.xml", data: []byte(stylesXML)},
		{name: "word/_rels/document.xml.rels", data: documentRelsXML(images)},
	}

	for i, img := range images {
		parts = append(parts, part{name: "word/" + mediaTarget(i, img), data: img.Data})
	}

	return parts
}

func (d *Document) images() []Image {
	var images []Image
	for _, b := range d.blocks {
		if img, ok := b.(Image); ok {
			images = append(images, img)
		}
	}

	return images
}

func mediaTarget(i int, img Image) string {
	return fmt.Sprintf("media/image%d.%s", i+1, img.ext)
}

// the styles part always takes rId1, images follow.
func imageRelID(i int) string {
	return fmt.Sprintf("rId%d", i+2)
}

func contentTypesXML(images []Image) []byte {
	exts := map[string]bool{}
	for _, img := range images {
		exts[img.ext] = true
	}

	sorted := make([]string, 0, len(exts))
	for e := range exts {
		sorted = append(sorted, e)
	}
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, e := range sorted {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, e, extensionContentTypes[e])
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`</Types>`)

	return []byte(b.String())
}

func corePropsXML(title, creator string) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	b.WriteString(`<dc:title>`)
	escape(&b, title)
	b.WriteString(`</dc:title><dc:creator>`)
	escape(&b, creator)
	b.WriteString(`</dc:creator></cp:coreProperties>`)

	return []byte(b.String())
}

func documentRelsXML(images []Image) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for i, img := range images {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`, imageRelID(i), mediaTarget(i, img))
	}
	b.WriteString(`</Relationships>`)

	return []byte(b.String())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
