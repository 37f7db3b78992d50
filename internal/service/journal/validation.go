package journal

import (
	"fmt"
	"regexp"

	"journal/internal/config"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var documentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateDocumentID(id string) error {
	return validation.Validate(id,
		validation.Required,
		validation.Length(1, 64),
		validation.Match(documentIDPattern).Error("document id may only contain letters, digits, '-' and '_'"),
	)
}

func validateCreateRequest(req *journalSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Length(0, config.MaxTitleLength)),
		validation.Field(&req.ID,
			validation.Length(0, 64),
			validation.Match(documentIDPattern).Error("document id may only contain letters, digits, '-' and '_'"),
		),
	)
}

func validateTitle(title *string) error {
	return validation.Validate(title, validation.NilOrNotEmpty, validation.Length(1, config.MaxTitleLength))
}

func validateOperationsRequest(req *journalSvc.OperationsRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Operations,
			validation.Required,
			validation.Length(1, config.MaxOperationsPerRequest),
			validation.Each(validation.By(validateOperation)),
		),
	)
}

func validateOperation(value interface{}) error {
	op, ok := value.(journalSvc.Operation)
	if !ok {
		return fmt.Errorf("invalid operation type")
	}

	var needsID, needsMedia bool
	switch op.Op {
	case journalSvc.OpUpdateContent, journalSvc.OpInsertChild, journalSvc.OpInsertSibling,
		journalSvc.OpDelete, journalSvc.OpOutdent, journalSvc.OpIndent, journalSvc.OpToggleCollapse:
		needsID = true
	case journalSvc.OpResizeMedia, journalSvc.OpDetachMedia:
		needsMedia = true
	}

	return validation.ValidateStruct(&op,
		validation.Field(&op.Op,
			validation.Required,
			validation.In(
				journalSvc.OpAddRoot, journalSvc.OpUpdateContent, journalSvc.OpInsertChild,
				journalSvc.OpInsertSibling, journalSvc.OpDelete, journalSvc.OpOutdent,
				journalSvc.OpIndent, journalSvc.OpToggleCollapse, journalSvc.OpInsertSection,
				journalSvc.OpSetTitle, journalSvc.OpResizeMedia, journalSvc.OpDetachMedia,
			),
		),
		validation.Field(&op.ID, validation.When(needsID, validation.Required)),
		validation.Field(&op.Content, validation.Length(0, config.MaxBulletContentLength)),
		validation.Field(&op.Label, validation.Length(0, config.MaxBulletContentLength)),
		validation.Field(&op.Title,
			validation.When(op.Op == journalSvc.OpSetTitle, validation.Required),
			validation.Length(0, config.MaxTitleLength),
		),
		validation.Field(&op.Kind, validation.When(needsMedia,
			validation.Required,
			validation.In(string(outline.MediaImage), string(outline.MediaVideo)),
		)),
		validation.Field(&op.MediaID, validation.When(needsMedia, validation.Required)),
		validation.Field(&op.Width, validation.When(op.Op == journalSvc.OpResizeMedia,
			validation.Required,
			validation.Min(1),
			validation.Max(config.MaxMediaDimension),
		)),
		validation.Field(&op.Height, validation.Min(1), validation.Max(config.MaxMediaDimension)),
		validation.Field(&op.Left, validation.In(0, 50, 100)),
	)
}

func validateResizeRequest(req *journalSvc.ResizeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Width, validation.Required, validation.Min(1), validation.Max(config.MaxMediaDimension)),
		validation.Field(&req.Height, validation.Min(1), validation.Max(config.MaxMediaDimension)),
		validation.Field(&req.Left, validation.In(0, 50, 100)),
	)
}

func validateUploadRequest(req *journalSvc.UploadRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.BulletID, validation.Required),
		validation.Field(&req.Kind,
			validation.Required,
			validation.In(outline.MediaImage, outline.MediaVideo),
		),
		validation.Field(&req.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Data,
			validation.Required.Error("file is empty"),
			validation.Length(1, config.MaxUploadSize).Error(fmt.Sprintf("file exceeds %d bytes", config.MaxUploadSize)),
		),
	)
}

func placement(width int, height, top, left *int) outline.Placement {
	return outline.Placement{Width: width, Height: height, Top: top, Left: left}
}
