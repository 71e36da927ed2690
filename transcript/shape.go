package transcript

// Shape maps messages onto output records one-to-one, keeping order.
func Shape(messages []RawMessage) []Record {
	records := make([]Record, 0, len(messages))
	for _, msg := range messages {
		records = append(records, shapeMessage(msg))
	}
	return records
}

func shapeMessage(msg RawMessage) Record {
	text := ""
	if msg.Text != nil {
		text = *msg.Text
	}

	attachments := make([]Attachment, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, Attachment{
			MIMEType:  att.MIMEType,
			Filename:  att.Filename,
			FilePath:  att.OriginalPath,
			IsMissing: att.IsMissing,
		})
	}

	return Record{
		Text:           text,
		Date:           msg.Date,
		IsFromMe:       msg.IsFromMe,
		HasAttachments: len(msg.Attachments) > 0,
		Attachments:    attachments,
	}
}
