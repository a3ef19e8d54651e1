package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/logger"
	"github.com/jakaprima/vending-machine/internal/machine"
	"github.com/jakaprima/vending-machine/internal/session"
)

const (
	codeInvalidRequest    = "invalid_request"
	codeInvalidPrice      = "invalid_price"
	codeInvalidName       = "invalid_name"
	codeDuplicateName     = "duplicate_name"
	codeNotFound          = "not_found"
	codeUnsupportedAmount = "unsupported_amount"
	codeSessionBusy       = "session_busy"
	codeNoActiveSession   = "no_active_session"
	codeInvalidSelection  = "invalid_selection"
	codeProcessMismatch   = "process_mismatch"
	codeUnavailable       = "unavailable"
	codeInternal          = "internal_error"
)

const noSessionDetail = "please insert money, use API /machine-process-money."

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type busyResponse struct {
	Error       string            `json:"error"`
	Detail      string            `json:"detail"`
	ProductList []catalog.Product `json:"product_list"`
	Description string            `json:"description"`
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var busy *machine.BusyError
	if errors.As(err, &busy) {
		products := busy.Products
		if products == nil {
			products = []catalog.Product{}
		}
		c.JSON(http.StatusBadRequest, busyResponse{
			Error:       codeSessionBusy,
			Detail:      busy.Error(),
			ProductList: products,
			Description: machine.BusyDescription,
		})
		return
	}

	status, body := h.classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err,
		})
	}
	c.JSON(status, body)
}

func (h *Handler) classify(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, errorResponse{codeNotFound, "Product not found"}
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusBadRequest, errorResponse{codeDuplicateName, "Product with this name already exists."}
	case errors.Is(err, catalog.ErrInvalidPrice):
		return http.StatusBadRequest, errorResponse{codeInvalidPrice, h.denominationRule()}
	case errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest, errorResponse{codeInvalidName, catalog.ErrInvalidName.Error()}
	case errors.Is(err, machine.ErrUnsupportedAmount):
		return http.StatusBadRequest, errorResponse{codeUnsupportedAmount, h.denominationRule()}
	case errors.Is(err, machine.ErrNoActiveSession):
		return http.StatusBadRequest, errorResponse{codeNoActiveSession, noSessionDetail}
	case errors.Is(err, machine.ErrInvalidSelection):
		return http.StatusBadRequest, errorResponse{codeInvalidSelection, machine.ErrInvalidSelection.Error()}
	case errors.Is(err, machine.ErrProcessMismatch):
		return http.StatusBadRequest, errorResponse{codeProcessMismatch, machine.ErrProcessMismatch.Error()}
	case errors.Is(err, session.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{codeUnavailable, "service temporarily unavailable"}
	default:
		return http.StatusInternalServerError, errorResponse{codeInternal, "internal server error"}
	}
}

func (h *Handler) denominationRule() string {
	return "The rule is that the vending machine can only accept denominations " + h.denoms + "."
}

// describeDenominations renders values as "Rp 2.000 and Rp 5.000" for IDR.
func describeDenominations(unit currency.Unit, values []int64) string {
	tag := language.Indonesian
	if unit != currency.IDR {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	symbol := p.Sprint(currency.Symbol(unit))

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = symbol + " " + p.Sprintf("%d", v)
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
