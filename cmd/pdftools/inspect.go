package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/digest"
	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/extract"
	"github.com/Kingy2709/pdf-tools/internal/filename"
	"github.com/Kingy2709/pdf-tools/internal/resolve"
)

var inspectLookup bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectLookup, "lookup", false, "Query the registry when a DOI is found")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Show one document's metadata, resolution, and proposed name",
	Long: `Dump everything the pipeline knows about a single document:
embedded metadata, extracted DOI, per-field resolution with provenance,
content digest, and the name the file would receive.

Example:
  pdftools inspect ~/papers/draft.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runInspectCmd,
}

// InspectResponse is the inspect command's output.
type InspectResponse struct {
	Path     string `json:"path"`
	Digest   string `json:"digest,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Embedded struct {
		Title    string `json:"title,omitempty"`
		Author   string `json:"author,omitempty"`
		Keywords string `json:"keywords,omitempty"`
		Created  string `json:"creation_date,omitempty"`
	} `json:"embedded"`
	Resolved struct {
		Title        string `json:"title"`
		TitleSource  string `json:"title_source"`
		Author       string `json:"author"`
		AuthorSource string `json:"author_source"`
		Year         string `json:"year"`
		YearSource   string `json:"year_source"`
		Journal      string `json:"journal,omitempty"`
	} `json:"resolved"`
	ProposedName string `json:"proposed_name"`
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	path := args[0]
	store := newStore()

	props, err := store.Read(path)
	if err != nil {
		// Malformed documents still resolve, on text alone.
		props = document.Properties{}
	}
	text, _ := extract.Pages(path, cfg.MaxPages)

	var resolver *resolve.Resolver
	if inspectLookup {
		resolver = resolve.New(newLookup(cfg), cfg.YearDigits)
	} else {
		resolver = resolve.New(nil, cfg.YearDigits)
	}
	res := resolver.Resolve(context.Background(), resolve.Input{
		Path:     path,
		Embedded: props,
		Text:     text,
		Infer:    func() extract.Inference { return extract.Infer(path) },
	})

	synth := &filename.Synthesizer{
		Style:      cfg.Style(),
		MaxLen:     cfg.MaxNameLen,
		DropStopwd: cfg.Stopwords,
	}

	resp := InspectResponse{Path: path, DOI: res.DOI}
	if d, err := digest.File(path); err == nil {
		resp.Digest = d
	}
	resp.Embedded.Title = props.Title
	resp.Embedded.Author = props.Author
	resp.Embedded.Keywords = props.Keywords
	resp.Embedded.Created = props.CreationDate
	resp.Resolved.Title = res.Title.Value
	resp.Resolved.TitleSource = string(res.Title.Source)
	resp.Resolved.Author = res.Author.Value
	resp.Resolved.AuthorSource = string(res.Author.Source)
	resp.Resolved.Year = res.Year.Value
	resp.Resolved.YearSource = string(res.Year.Source)
	resp.Resolved.Journal = res.Journal
	resp.ProposedName = synth.Name(res)

	if humanOutput {
		outputHuman("path:      %s\n", resp.Path)
		outputHuman("digest:    %s\n", resp.Digest)
		outputHuman("doi:       %s\n", resp.DOI)
		outputHuman("title:     %q (%s)\n", resp.Resolved.Title, resp.Resolved.TitleSource)
		outputHuman("author:    %q (%s)\n", resp.Resolved.Author, resp.Resolved.AuthorSource)
		outputHuman("year:      %q (%s)\n", resp.Resolved.Year, resp.Resolved.YearSource)
		outputHuman("proposed:  %s\n", resp.ProposedName)
		return nil
	}
	return outputJSON(resp)
}
