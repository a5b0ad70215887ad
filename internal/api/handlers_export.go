package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
	"github.com/skinior/skinior-api/internal/storage"
)

// ExportConsultations streams the caller's consultations as a json or csv attachment.
func (handler *Handler) ExportConsultations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		return handler.respondError(c, err)
	}
	from, to, err := services.ParseExportRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}
	now := handler.now()

	if format == services.ExportFormatCSV {
		rows, err := handler.exportService.BuildCSVRows(c.UserContext(), user.ID, from, to)
		if err != nil {
			return handler.respondError(c, err)
		}
		payload, err := encodeExportCSV(rows)
		if err != nil {
			return handler.respondError(c, err)
		}
		setExportAttachmentHeaders(c, "text/csv", buildExportFilename(now, "csv"))
		return c.Send(payload)
	}

	document, err := handler.exportService.BuildDocument(c.UserContext(), user.ID, from, to, now)
	if err != nil {
		return handler.respondError(c, err)
	}
	serialized, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return handler.respondError(c, err)
	}
	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, buildExportFilename(now, "json"))
	return c.Send(serialized)
}

// ArchiveConsultations uploads a json export to object storage and returns a
// presigned download link.
func (handler *Handler) ArchiveConsultations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}
	if handler.archive == nil {
		return handler.respondError(c, storage.ErrArchiveDisabled)
	}

	from, to, err := services.ParseExportRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}
	now := handler.now()

	document, err := handler.exportService.BuildDocument(c.UserContext(), user.ID, from, to, now)
	if err != nil {
		return handler.respondError(c, err)
	}
	serialized, err := json.Marshal(document)
	if err != nil {
		return handler.respondError(c, err)
	}

	object, err := handler.archive.Put(c.UserContext(), storage.ArchiveKey(user.ID, now, "json"), fiber.MIMEApplicationJSON, serialized, now)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.log.Info("consultation export archived", "user_id", user.ID, "key", object.Key, "size", object.Size)

	return handler.respond(c, fiber.StatusCreated, fiber.Map{
		"archive": object,
		"summary": document.Summary,
	}, "consultations.archived")
}

func encodeExportCSV(rows []services.ExportCSVRow) ([]byte, error) {
	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func buildExportFilename(now time.Time, extension string) string {
	return fmt.Sprintf("skinior-consultations-%s.%s", now.Format("2006-01-02"), extension)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}
