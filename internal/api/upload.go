package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/media"
)

// UploadImage handles POST /api/admin/upload/image
func (h *Handlers) UploadImage(c *fiber.Ctx) error {
	return h.upload(c, media.KindImage)
}

// UploadVideo handles POST /api/admin/upload/video
func (h *Handlers) UploadVideo(c *fiber.Ctx) error {
	return h.upload(c, media.KindVideo)
}

func (h *Handlers) upload(c *fiber.Ctx, kind media.Kind) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("A file field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Validation("Could not read uploaded file")
	}
	defer f.Close()

	up, err := h.uploader.Save(c.UserContext(), kind, f, fh.Size)
	if err != nil {
		return err
	}
	h.log.Info().Str("key", up.Key).Str("content_type", up.ContentType).Int64("size", up.Size).Msg("File uploaded")
	return c.Status(fiber.StatusCreated).JSON(up)
}
