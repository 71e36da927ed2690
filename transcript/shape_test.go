package transcript

import (
	"encoding/json"
	"testing"

	"github.com/nalgeon/be"
)

func TestShapeDefaultsAndAttachments(t *testing.T) {
	msgs := []RawMessage{
		{Date: "2024-03-05 10:00:00", IsFromMe: true},
		{
			Text: strPtr("look"),
			Date: "2024-03-05 10:01:00",
			Attachments: []AttachmentRef{
				{MIMEType: strPtr("image/jpeg"), Filename: strPtr("IMG_1.jpg"), OriginalPath: strPtr("/tmp/IMG_1.jpg")},
				{IsMissing: true},
			},
		},
	}

	records := Shape(msgs)
	be.Equal(t, len(records), 2)

	be.Equal(t, records[0].Text, "")
	be.Equal(t, records[0].Date, "2024-03-05 10:00:00")
	be.True(t, records[0].IsFromMe)
	be.True(t, !records[0].HasAttachments)
	be.Equal(t, records[0].Attachments, []Attachment{})

	be.Equal(t, records[1].Text, "look")
	be.True(t, records[1].HasAttachments)
	be.Equal(t, len(records[1].Attachments), 2)
	be.Equal(t, *records[1].Attachments[0].FilePath, "/tmp/IMG_1.jpg")
	be.Equal(t, *records[1].Attachments[0].Filename, "IMG_1.jpg")
	be.True(t, !records[1].Attachments[0].IsMissing)
	be.True(t, records[1].Attachments[1].MIMEType == nil)
	be.True(t, records[1].Attachments[1].IsMissing)
}

func TestShapeEmptyIsNonNil(t *testing.T) {
	records := Shape(nil)
	be.True(t, records != nil)
	be.Equal(t, len(records), 0)
}

func TestRecordJSONShape(t *testing.T) {
	raw, err := json.Marshal(Transcript{
		Messages: Shape([]RawMessage{{
			Text:        strPtr("hi"),
			Date:        "2024-03-05 10:00:00",
			Attachments: []AttachmentRef{{MIMEType: strPtr("image/png")}},
		}}),
		TotalCount: 1,
	})
	be.Err(t, err, nil)
	be.Equal(t, string(raw), `{"messages":[{"text":"hi","date":"2024-03-05 10:00:00","is_from_me":false,"has_attachments":true,`+
		`"attachments":[{"mime_type":"image/png","filename":null,"file_path":null,"is_missing":false}]}],"total_count":1}`)
}
