package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardshare/internal/dto"
	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/extract"
	"github.com/octobees/cardshare/internal/service"
	"github.com/octobees/cardshare/internal/validation"
)

// ProfileHandler serves the contact profile and its share payloads.
type ProfileHandler struct {
	profiles    *service.ProfileService
	phoneRegion string
	logger      *slog.Logger
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, phoneRegion string, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{profiles: profiles, phoneRegion: phoneRegion, logger: logger}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	rec, err := h.profiles.Current(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "", rec)
}

// Put handles PUT /profile. The body is a complete candidate record.
func (h *ProfileHandler) Put(c echo.Context) error {
	candidate, err := decodeObject(c.Request().Body)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	rec, err := h.profiles.Submit(c.Request().Context(), candidate)
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "profile saved", rec)
}

// PatchMetadata handles PATCH /profile/metadata.
func (h *ProfileHandler) PatchMetadata(c echo.Context) error {
	var req dto.MetadataRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	rec, err := h.profiles.UpdateMetadata(c.Request().Context(), req.Tags, req.Notes)
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "metadata saved", rec)
}

// UploadImage handles POST /profile/images/:slot with a multipart "file" field.
func (h *ProfileHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to read file")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, validation.MaxImageBytes+1))
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to read file")
	}

	file := validation.ImageFile{Name: fh.Filename, Size: fh.Size, MediaType: fh.Header.Get(echo.HeaderContentType)}
	rec, err := h.profiles.SetImage(c.Request().Context(), service.ImageSlot(c.Param("slot")), file, content)
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "image saved", rec)
}

// DeleteImage handles DELETE /profile/images/:slot.
func (h *ProfileHandler) DeleteImage(c echo.Context) error {
	rec, err := h.profiles.ClearImage(c.Request().Context(), service.ImageSlot(c.Param("slot")))
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "image removed", rec)
}

// ScanMerge handles POST /profile/scan-merge. The body carries scanned fields
// and is cleaned exactly like model output before it is merged.
func (h *ProfileHandler) ScanMerge(c echo.Context) error {
	obj, err := decodeObject(c.Request().Body)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	data := extract.MapExtracted(obj)
	if data.Empty() {
		return Error(c, http.StatusBadRequest, "no contact fields to merge")
	}
	rec, err := h.profiles.ApplyExtracted(c.Request().Context(), data)
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "scan merged", rec)
}

// VCard handles GET /profile/vcard.
func (h *ProfileHandler) VCard(c echo.Context) error {
	rec, err := h.profiles.Current(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="contact.vcf"`)
	return c.Blob(http.StatusOK, "text/vcard; charset=utf-8", []byte(service.VCard(rec, h.phoneRegion)))
}

// Share handles GET /profile/share.
func (h *ProfileHandler) Share(c echo.Context) error {
	rec, err := h.profiles.Current(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return Success(c, http.StatusOK, "", service.Share(rec, h.phoneRegion))
}

// Templates handles GET /templates.
func (h *ProfileHandler) Templates(c echo.Context) error {
	resp := dto.TemplatesResponse{SuggestedTags: entity.SuggestedTags()}
	for _, t := range entity.Templates() {
		resp.Templates = append(resp.Templates, dto.TemplateInfo{Name: string(t), Color: t.Color()})
	}
	return Success(c, http.StatusOK, "", resp)
}

func (h *ProfileHandler) fail(c echo.Context, err error) error {
	var rej *validation.Rejection
	var imgErr *service.ImageError
	switch {
	case errors.As(err, &rej):
		return FieldError(c, http.StatusUnprocessableEntity, rej.Field, rej.Error())
	case errors.As(err, &imgErr):
		return Error(c, http.StatusUnprocessableEntity, imgErr.Reason)
	case errors.Is(err, service.ErrUnknownImageSlot):
		return Error(c, http.StatusNotFound, "unknown image slot")
	default:
		h.logger.ErrorContext(c.Request().Context(), "profile request failed", "error", err)
		return Error(c, http.StatusInternalServerError, "unable to process profile")
	}
}

// decodeObject reads a JSON object body without binding it to a struct, so
// the schema guard sees exactly what the client sent.
func decodeObject(r io.Reader) (map[string]any, error) {
	var obj map[string]any
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return obj, nil
}
