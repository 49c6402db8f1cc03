package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/navikt/brd-backend/pkg/brd"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/parser"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

var (
	formPath    = flag.String("form", "form.yaml", "path to the YAML form")
	outPath     = flag.String("out", "", "path of the rendered document, defaults to the generated file name")
	attachments = flag.StringSlice("attach", nil, "files to attach, images are embedded in the document")
	summary     = flag.Bool("summary", false, "print the plain text summary instead of rendering")
	prompt      = flag.Bool("prompt", false, "print the narrative drafting prompt instead of rendering")
	creator     = flag.String("creator", "brd", "document creator")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	f, err := os.Open(*formPath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening form")
	}

	record, err := brd.LoadForm(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("loading form")
	}

	for _, path := range *attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("reading attachment")
		}

		name := filepath.Base(path)

		record.Attachments = append(record.Attachments, &service.Attachment{
			FileName:    name,
			ContentType: parser.ContentTypeOf(name, ""),
			Data:        data,
		})
	}

	renderer := brd.NewRenderer(*creator, log)

	if *summary {
		fmt.Print(renderer.Summary(record))
		return
	}

	if *prompt {
		fmt.Print(renderer.Prompt(record))
		return
	}

	doc, err := renderer.Render(record)
	if err != nil {
		log.Fatal().Err(err).Msg("rendering document")
	}

	out := *outPath
	if len(out) == 0 {
		out = doc.FileName
	}

	err = os.WriteFile(out, doc.Data, 0o600)
	if err != nil {
		log.Fatal().Err(err).Str("path", out).Msg("writing document")
	}

	log.Info().Str("path", out).Int("bytes", len(doc.Data)).Msg("document written")
}
