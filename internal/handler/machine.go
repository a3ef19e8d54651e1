package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jakaprima/vending-machine/internal/catalog"
)

type insertMoneyRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type insertMoneyResponse struct {
	Process     string            `json:"process"`
	Purchasable []catalog.Product `json:"productPurchaseAble"`
}

type currentSessionResponse struct {
	Process     string            `json:"process"`
	Amount      int64             `json:"amount"`
	Purchasable []catalog.Product `json:"productPurchaseAble"`
}

type cancelResponse struct {
	Process string `json:"process"`
	Refund  int64  `json:"refund"`
}

func (h *Handler) insertMoney(c *gin.Context) {
	var req insertMoneyRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.machine.InsertMoney(c.Request.Context(), *req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, insertMoneyResponse{
		Process:     s.ProcessID,
		Purchasable: s.Products,
	})
}

func (h *Handler) currentSession(c *gin.Context) {
	s, err := h.machine.Current(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, currentSessionResponse{
		Process:     s.ProcessID,
		Amount:      s.Amount,
		Purchasable: s.Products,
	})
}

func (h *Handler) cancelSession(c *gin.Context) {
	s, err := h.machine.Cancel(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelResponse{
		Process: s.ProcessID,
		Refund:  s.Amount,
	})
}

func (h *Handler) purchase(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  codeInvalidRequest,
			Detail: "selected product index must be an integer",
		})
		return
	}

	res, err := h.machine.Purchase(c.Request.Context(), c.Param("process_id"), index)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
