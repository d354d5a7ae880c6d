package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/service"
)

// Handler contains HTTP handlers
type Handler struct {
	accounts  *service.AccountService
	catalog   *service.CatalogService
	orders    *service.OrderService
	reviews   *service.ReviewService
	merchants *service.MerchantService
	profile   *service.ProfileService
	promos    *service.PromoService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	accounts *service.AccountService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	reviews *service.ReviewService,
	merchants *service.MerchantService,
	profile *service.ProfileService,
	promos *service.PromoService,
) *Handler {
	return &Handler{
		accounts:  accounts,
		catalog:   catalog,
		orders:    orders,
		reviews:   reviews,
		merchants: merchants,
		profile:   profile,
		promos:    promos,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(rateLimitMiddleware(100, 200))
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", h.register)
	v1.POST("/auth/login", h.login)

	v1.GET("/products", h.listProducts)
	v1.GET("/products/:id", h.getProduct)
	v1.GET("/products/:id/reviews", h.listReviews)
	v1.GET("/categories", h.listCategories)
	v1.GET("/coupons/:code", h.getCoupon)

	auth := v1.Group("")
	auth.Use(authMiddleware(h.accounts))
	{
		auth.GET("/me", h.getProfile)
		auth.PUT("/me/email", h.updateEmail)
		auth.DELETE("/me", h.deleteAccount)

		auth.POST("/merchants", h.applyMerchant)
		auth.GET("/merchants/me", h.getOwnMerchant)
		auth.PUT("/merchants/:id", h.updateMerchant)
		auth.PATCH("/merchants/:id/status", h.setMerchantStatus)
		auth.DELETE("/merchants/:id", h.deleteMerchant)

		auth.POST("/products", h.createProduct)
		auth.PUT("/products/:id", h.updateProduct)
		auth.DELETE("/products/:id", h.deleteProduct)
		auth.POST("/products/:id/inventory", h.restockProduct)
		auth.GET("/products/:id/inventory", h.getInventory)

		auth.POST("/categories", h.createCategory)
		auth.POST("/coupons", h.createCoupon)

		auth.POST("/orders", h.placeOrder)
		auth.GET("/orders", h.listOrders)
		auth.GET("/orders/:id", h.getOrder)
		auth.GET("/orders/:id/payment", h.getPayment)
		auth.PATCH("/orders/:id/status", h.updateOrderStatus)

		auth.POST("/reviews", h.createReview)
		auth.PUT("/reviews/:id", h.updateReview)
		auth.DELETE("/reviews/:id", h.deleteReview)

		auth.GET("/wishlist", h.getWishlist)
		auth.POST("/wishlist", h.addToWishlist)
		auth.DELETE("/wishlist/:id", h.removeFromWishlist)

		auth.GET("/addresses", h.getAddresses)
		auth.POST("/addresses", h.addAddress)
		auth.PUT("/addresses/:id", h.updateAddress)
		auth.DELETE("/addresses/:id", h.removeAddress)

		auth.GET("/notifications", h.getNotifications)
		auth.PATCH("/notifications/:id/read", h.markNotificationRead)
	}
}

// respondError maps domain errors to HTTP statuses. Policy denials never leak
// row data: the caller sees the same 403 whether the row exists or not.
func respondError(c *gin.Context, err error) {
	var pqErr *pq.Error
	switch {
	case authz.IsNotAuthorized(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &pqErr) && pqErr.Code.Class() == "23":
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Constraint violation",
			"details": pqErr.Message,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// --- auth ---

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.accounts.GetProfile(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.accounts.UpdateEmail(c.Request.Context(), subjectFrom(c), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), subjectFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- merchants ---

func (h *Handler) applyMerchant(c *gin.Context) {
	var req service.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	merchant, err := h.merchants.Apply(c.Request.Context(), subjectFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, merchant)
}

func (h *Handler) getOwnMerchant(c *gin.Context) {
	merchant, err := h.merchants.GetOwn(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

func (h *Handler) updateMerchant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	merchant := &models.Merchant{ID: id, BusinessName: req.BusinessName, BusinessEmail: req.BusinessEmail}
	if err := h.merchants.Update(c.Request.Context(), subjectFrom(c), merchant); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setMerchantStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.merchants.SetStatus(c.Request.Context(), subjectFrom(c), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteMerchant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.merchants.Delete(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- catalog ---

func (h *Handler) listProducts(c *gin.Context) {
	categoryID := uuid.Nil
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		categoryID = parsed
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), subjectFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product := &models.Product{
		ID:            id,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}
	if err := h.catalog.UpdateProduct(c.Request.Context(), subjectFrom(c), product); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restockProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		StockChange int    `json:"stock_change" binding:"required"`
		Reason      string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	entry, err := h.catalog.RestockProduct(c.Request.Context(), subjectFrom(c), id, req.StockChange, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) getInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.catalog.GetInventory(c.Request.Context(), subjectFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), subjectFrom(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// --- coupons ---

func (h *Handler) createCoupon(c *gin.Context) {
	var req service.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	coupon, err := h.promos.CreateCoupon(c.Request.Context(), subjectFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *Handler) getCoupon(c *gin.Context) {
	coupon, err := h.promos.ValidateCoupon(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// --- orders ---

func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orders.PlaceOrder(c.Request.Context(), subjectFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, items, err := h.orders.GetOrder(c.Request.Context(), subjectFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

func (h *Handler) getPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.orders.GetPayment(c.Request.Context(), subjectFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.orders.UpdateStatus(c.Request.Context(), subjectFrom(c), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- reviews ---

func (h *Handler) listReviews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.reviews.ListReviews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) createReview(c *gin.Context) {
	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), subjectFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) updateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), subjectFrom(c), id, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.DeleteReview(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- wishlist ---

func (h *Handler) getWishlist(c *gin.Context) {
	items, err := h.profile.GetWishlist(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) addToWishlist(c *gin.Context) {
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.profile.AddToWishlist(c.Request.Context(), subjectFrom(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) removeFromWishlist(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.profile.RemoveFromWishlist(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- addresses ---

func (h *Handler) getAddresses(c *gin.Context) {
	addresses, err := h.profile.GetAddresses(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) addAddress(c *gin.Context) {
	var address models.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.profile.AddAddress(c.Request.Context(), subjectFrom(c), &address); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *Handler) updateAddress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var address models.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	address.ID = id

	if err := h.profile.UpdateAddress(c.Request.Context(), subjectFrom(c), &address); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeAddress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.profile.RemoveAddress(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- notifications ---

func (h *Handler) getNotifications(c *gin.Context) {
	notifications, err := h.profile.GetNotifications(c.Request.Context(), subjectFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.profile.MarkNotificationRead(c.Request.Context(), subjectFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
