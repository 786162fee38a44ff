// Package review pushes conflicted extraction rows to a Notion database for
// human resolution.
package review

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/pkg/notion"
)

// titleProperty names the column that becomes the page title; the other
// populated columns pass through as rich text.
const titleProperty = "Filename"

// LoadConflicts reads a results CSV and returns the rows flagged as
// conflicted, in file order.
func LoadConflicts(csvPath string) ([]model.OutputRow, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("review: open csv %s", csvPath))
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	// Conflict details make row widths uneven in hand-edited files.
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "review: read csv")
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := records[0]
	var rows []model.OutputRow
	for _, rec := range records[1:] {
		row := mapRow(headers, rec)
		if row.ConflictFlag != model.ConflictFlagged {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapRow pairs headers with values by name, so files with reordered or
// dropped columns still load.
func mapRow(headers, rec []string) model.OutputRow {
	byName := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(rec) {
			byName[h] = rec[i]
		}
	}
	return model.OutputRow{
		Filename:             byName["Filename"],
		Date:                 byName["Date"],
		TailNumber:           byName["Tail_Number"],
		EventType:            byName["Event_Type"],
		ComponentDescription: byName["Component_Description"],
		Reason:               model.RemovalReason(byName["Reason_for_Removal"]),
		ConflictFlag:         byName["Conflict_Flag"],
		ConflictDetails:      byName["Conflict_Details"],
	}
}

// Pusher creates one review page per conflicted row.
type Pusher struct {
	client notion.Client
	dbID   string
}

// NewPusher returns a Pusher targeting the given review database.
func NewPusher(client notion.Client, dbID string) *Pusher {
	return &Pusher{client: client, dbID: dbID}
}

// Push creates a page for every row not already on the board. Rows whose
// filename matches an existing page title are skipped, so re-running review
// after a partial push does not duplicate pages. Returns the number created.
func (p *Pusher) Push(ctx context.Context, rows []model.OutputRow) (int, error) {
	existing, err := p.existingFilenames(ctx)
	if err != nil {
		return 0, err
	}

	log := zap.L()
	created := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return created, eris.Wrap(err, "review: push cancelled")
		}
		if _, ok := existing[row.Filename]; ok {
			log.Debug("review: page exists, skipping",
				zap.String("filename", row.Filename))
			continue
		}
		if _, err := p.client.CreatePage(ctx, PageRequest(p.dbID, row)); err != nil {
			return created, eris.Wrap(err, fmt.Sprintf("review: create page for %s", row.Filename))
		}
		log.Info("review: pushed conflict",
			zap.String("filename", row.Filename),
			zap.String("details", row.ConflictDetails))
		created++
	}
	return created, nil
}

// existingFilenames collects the page titles already on the review board.
func (p *Pusher) existingFilenames(ctx context.Context) (map[string]struct{}, error) {
	pages, err := notion.QueryAll(ctx, p.client, p.dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "review: list existing pages")
	}
	existing := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		if name := pageTitle(page); name != "" {
			existing[name] = struct{}{}
		}
	}
	return existing, nil
}

// pageTitle pulls the Filename title out of a page, tolerating pages whose
// schema drifted.
func pageTitle(p notionapi.Page) string {
	prop, ok := p.Properties[titleProperty]
	if !ok {
		return ""
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	return plainText(tp.Title)
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}

// PageRequest builds the create request for one conflicted row: Filename as
// the title, every other populated column as rich text. Conflict_Flag is
// omitted because every page on the board is a conflict.
func PageRequest(dbID string, row model.OutputRow) *notionapi.PageCreateRequest {
	props := notionapi.Properties{
		titleProperty: notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: row.Filename}},
			},
		},
	}

	fields := []struct {
		name  string
		value string
	}{
		{"Date", row.Date},
		{"Tail_Number", row.TailNumber},
		{"Event_Type", row.EventType},
		{"Component_Description", row.ComponentDescription},
		{"Reason_for_Removal", string(row.Reason)},
		{"Conflict_Details", row.ConflictDetails},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		props[f.name] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: f.value}},
			},
		}
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	}
}
