package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/logger"
)

type createProductRequest struct {
	Name  string `json:"name" binding:"required"`
	Price *int64 `json:"price" binding:"required"`
}

type updateProductRequest struct {
	Name  *string `json:"name"`
	Price *int64  `json:"price"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.products.Create(c.Request.Context(), req.Name, *req.Price)
	if err != nil {
		h.writeError(c, err)
		return
	}

	logger.Info("product created", map[string]any{
		"id":    p.ID,
		"name":  p.Name,
		"price": p.Price,
	})

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req updateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, catalog.Update{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	logger.Info("product updated", map[string]any{
		"id":    p.ID,
		"name":  p.Name,
		"price": p.Price,
	})

	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	p, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	logger.Info("product deleted", map[string]any{"id": p.ID})

	c.JSON(http.StatusOK, p)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  codeInvalidRequest,
			Detail: "product id must be an integer",
		})
		return 0, false
	}
	return id, true
}
