package handler

import (
	"fmt"
	"net/http"
	"notes-marketplace/internal/dto"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	listingService service.ListingService
}

func NewAdminHandler(listingService service.ListingService) *AdminHandler {
	return &AdminHandler{
		listingService: listingService,
	}
}

func (h *AdminHandler) toDTO(listing *model.Listing) *dto.AdminListing {
	return &dto.AdminListing{
		ID:        listing.ID,
		Title:     listing.Title,
		Price:     listing.Price,
		FilePath:  listing.AssetKey,
		URL:       h.listingService.AssetURL(listing),
		CreatedAt: listing.CreatedAt.UnixMilli(),
	}
}

func (h *AdminHandler) ListListings(c echo.Context) error {
	ctx := c.Request().Context()

	listings, err := h.listingService.List(ctx)
	if err != nil {
		return err
	}

	out := make([]*dto.AdminListing, len(listings))
	for i, listing := range listings {
		out[i] = h.toDTO(listing)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) UploadListing(c echo.Context) error {
	ctx := c.Request().Context()

	if err := requireFields("title", c.FormValue("title"), "price", c.FormValue("price")); err != nil {
		return err
	}

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return fmt.Errorf("%w: price must be a number", service.ErrValidationFailed)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file required", service.ErrValidationFailed)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	listing, err := h.listingService.Upload(ctx, &service.UploadListingInput{
		Title:       c.FormValue("title"),
		Price:       price,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Body:        file,
		Size:        fileHeader.Size,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, h.toDTO(listing))
}

func (h *AdminHandler) DeleteListing(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.listingService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "deleted",
	})
}
