package handlers

import (
	"net/http"

	"markethub_backend/internal/services"
	"markethub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	*BaseHandler
	propertyService   services.PropertyService
	inquiryService    services.InquiryService
	moderationService services.ModerationService
}

func NewPropertyHandler(
	base *BaseHandler,
	propertyService services.PropertyService,
	inquiryService services.InquiryService,
	moderationService services.ModerationService,
) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:       base,
		propertyService:   propertyService,
		inquiryService:    inquiryService,
		moderationService: moderationService,
	}
}

// Create принимает multipart-форму: поля объекта + файлы images
func (h *PropertyHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	req := &dto.CreatePropertyRequest{
		PropertyTitle:       c.PostForm("property_title"),
		PropertyType:        c.PostForm("property_type"),
		ListingType:         c.PostForm("listing_type"),
		FullAddress:         c.PostForm("full_address"),
		State:               c.PostForm("state"),
		City:                c.PostForm("city"),
		Bedrooms:            ParseFormInt(c, "bedrooms"),
		Bathrooms:           ParseFormInt(c, "bathrooms"),
		SizeSqm:             ParseFormFloat(c, "size_sqm"),
		ParkingSpots:        ParseFormInt(c, "parking_spots"),
		PropertyDescription: c.PostForm("property_description"),
		FurnishingStatus:    c.PostForm("furnishing_status"),
		Amenities:           c.PostFormArray("amenities"),
		Price:               ParseFormFloat(c, "price"),
		PricePeriod:         c.PostForm("price_period"),
		ContactMethod:       c.PostForm("contact_method"),
		ExternalLink:        c.PostForm("external_link"),
		Captions:            c.PostFormArray("captions"),
		ThumbnailIndex:      parseThumbnailIndex(c),
	}

	images, closers, ok := h.collectImages(c)
	if !ok {
		return
	}
	defer func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}()
	req.Images = images

	resp, err := h.propertyService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PropertyHandler) List(c *gin.Context) {
	page, limit := ParsePagination(c)

	resp, err := h.propertyService.List(page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDetail считает просмотр: каждый вызов добавляет 1 к view_count
func (h *PropertyHandler) GetDetail(c *gin.Context) {
	resp, err := h.propertyService.GetDetail(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) MyListings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.propertyService.MyListings(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PropertyHandler) ByOwner(c *gin.Context) {
	items, err := h.propertyService.ByOwner(c.Param("user_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

func (h *PropertyHandler) SetThumbnail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req struct {
		ImageID string `json:"image_id" validate:"required"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.propertyService.SetThumbnail(c.Param("id"), userID, req.ImageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thumbnail updated"})
}

// Inquiries

func (h *PropertyHandler) CreateInquiry(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.InquiryCreateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.inquiryService.Create(c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PropertyHandler) MyInquiries(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.inquiryService.MyInquiries(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PropertyHandler) ListInquiries(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.inquiryService.ListForProperty(c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PropertyHandler) GetInquiry(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.inquiryService.GetDetail(c.Param("inquiry_id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) UpdateInquiryStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateInteractionStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.inquiryService.UpdateStatus(c.Param("inquiry_id"), userID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inquiry status updated"})
}

func (h *PropertyHandler) WithdrawInquiry(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.inquiryService.Withdraw(c.Param("inquiry_id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inquiry withdrawn"})
}

// Moderation (admin-only, роль проверяет middleware)

func (h *PropertyHandler) Approve(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.moderationService.ApproveProperty(c.Param("id"), adminID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property approved"})
}

func (h *PropertyHandler) Reject(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.moderationService.RejectProperty(c.Param("id"), adminID, req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property rejected"})
}
