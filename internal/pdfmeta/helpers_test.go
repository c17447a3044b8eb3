package pdfmeta

import "github.com/Kingy2709/pdf-tools/internal/document"

func documentProps(title, author, keywords string) document.Properties {
	return document.Properties{Title: title, Author: author, Keywords: keywords}
}
