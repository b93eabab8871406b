package api

import (
	"tagdock/internal/intake"
	"tagdock/internal/records"
)

// FromDocument converts a stored record to its API representation.
func FromDocument(doc *records.Document) DocumentRecord {
	if doc == nil {
		return DocumentRecord{}
	}

	dto := DocumentRecord{
		TagID:  doc.TagID,
		Copies: make([]Copy, 0, len(doc.Copies)),
	}
	if !doc.CreatedAt.IsZero() {
		dto.CreatedAt = doc.CreatedAt.UTC().Format(dateTimeFormat)
	}
	for _, c := range doc.Copies {
		copyDTO := Copy{
			FileName:    c.FileName,
			Location:    c.Location,
			Fingerprint: c.Fingerprint.String(),
		}
		if !c.UploadedAt.IsZero() {
			copyDTO.UploadedAt = c.UploadedAt.UTC().Format(dateTimeFormat)
		}
		dto.Copies = append(dto.Copies, copyDTO)
	}
	return dto
}

// FromBatchOutcome converts an intake result to the API payload. Bucket
// slices are always non-nil so clients see empty arrays, not null.
func FromBatchOutcome(outcome intake.BatchOutcome) IntakeResponse {
	resp := IntakeResponse{
		Uploaded:   make([]UploadedItem, 0, len(outcome.Uploaded)),
		Duplicates: make([]DuplicateItem, 0, len(outcome.Duplicates)),
		Failed:     make([]FailedItem, 0, len(outcome.Failed)),
	}
	for _, item := range outcome.Uploaded {
		resp.Uploaded = append(resp.Uploaded, UploadedItem{
			Index:       item.Index,
			FileName:    item.FileName,
			TagID:       item.TagID,
			Fingerprint: item.Fingerprint.String(),
			Location:    item.Location,
		})
	}
	for _, item := range outcome.Duplicates {
		resp.Duplicates = append(resp.Duplicates, DuplicateItem{
			Index:            item.Index,
			FileName:         item.FileName,
			TagID:            item.TagID,
			Fingerprint:      item.Fingerprint.String(),
			ExistingLocation: item.ExistingLocation,
			AuditLocation:    item.AuditLocation,
		})
	}
	for _, item := range outcome.Failed {
		resp.Failed = append(resp.Failed, FailedItem{
			Index:    item.Index,
			FileName: item.FileName,
			Reason:   item.Reason,
		})
	}
	return resp
}

// FromStats converts a store summary to the API payload.
func FromStats(summary records.StatsSummary) StatsResponse {
	return StatsResponse{Tags: summary.Tags, Copies: summary.Copies}
}
