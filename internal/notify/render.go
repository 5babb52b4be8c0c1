package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/example/slotwatch/internal/slots"
	"github.com/example/slotwatch/internal/snapshot"
)

// DefaultSubject is used when Renderer.Subject is empty.
const DefaultSubject = "New times available"

//go:embed templates/digest.html
var templatesFS embed.FS

var digestTmpl = template.Must(template.ParseFS(templatesFS, "templates/digest.html"))

// Message is a rendered digest.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type Renderer struct {
	Subject string
}

type cityBlock struct {
	Name  string
	Slots []slots.TimeSlot
}

// Render builds the HTML body with one block per city, cities sorted by
// name, and a text body holding the diff as indented JSON.
func (r Renderer) Render(diff snapshot.Diff) (Message, error) {
	subject := r.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	data := struct {
		Subject string
		Cities  []cityBlock
	}{Subject: subject}
	for _, city := range diff.Cities() {
		data.Cities = append(data.Cities, cityBlock{Name: city, Slots: diff[city]})
	}

	var html bytes.Buffer
	if err := digestTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	text, err := diff.MarshalIndent()
	if err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{Subject: subject, HTML: html.String(), Text: string(text)}, nil
}
