package pages

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoPages = errors.New("no pages")
var ErrInvalidPageNumber = errors.New("invalid page number")

// Page is one unit of the dataset: a CSV document and its position.
type Page struct {
	Number int
	// NextPage is 0 on the last page and 1 otherwise.
	NextPage int
	CSV      []byte
	// File is the base name of the page file when the page was read from
	// a dataset directory.
	File string
}

type EnvelopePage struct {
	PageNumber int    `json:"page_number"`
	NextPage   int    `json:"next_page"`
	CSVData    string `json:"csv_data"`
}

// Envelope is the document returned by the transactions API.
type Envelope struct {
	Pages []EnvelopePage `json:"pages"`
}

// Build numbers the given CSV documents from 1 and links them so that only
// the last one has NextPage 0.
func Build(csvs [][]byte) []Page {
	out := make([]Page, len(csvs))
	for i, data := range csvs {
		next := 1
		if i == len(csvs)-1 {
			next = 0
		}
		out[i] = Page{
			Number:   i + 1,
			NextPage: next,
			CSV:      data,
		}
	}
	return out
}

func Encode(pages []Page) Envelope {
	env := Envelope{Pages: make([]EnvelopePage, len(pages))}
	for i, p := range pages {
		env.Pages[i] = EnvelopePage{
			PageNumber: p.Number,
			NextPage:   p.NextPage,
			CSVData:    base64.StdEncoding.EncodeToString(p.CSV),
		}
	}
	return env
}

// Decode parses an API response and returns its pages in document order,
// numbered by position from 1. The page_number field is not trusted. Reading
// stops after the first page whose next_page is 0, any pages after it are
// ignored.
func Decode(raw []byte) ([]Page, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Pages) == 0 {
		return nil, ErrNoPages
	}

	var out []Page
	for i, p := range env.Pages {
		data, err := base64.StdEncoding.DecodeString(p.CSVData)
		if err != nil {
			return nil, fmt.Errorf("decode page %d: %w", i+1, err)
		}
		out = append(out, Page{
			Number:   i + 1,
			NextPage: p.NextPage,
			CSV:      data,
		})
		if p.NextPage == 0 {
			break
		}
	}
	return out, nil
}
