package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/service/cart"
	"github.com/mamadbah2/shopsim/internal/service/checkout"
)

// APIHandler exposes the same intents as the page over JSON.
type APIHandler struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewAPIHandler constructs the JSON handler.
func NewAPIHandler(deps Dependencies, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{deps: deps, logger: logger}
}

type productResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
}

type catalogResponse struct {
	Products []productResponse `json:"products"`
	Error    string            `json:"error,omitempty"`
}

type cartLineResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Quantity  int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	Lines         []cartLineResponse `json:"lines"`
	Count         int                `json:"count"`
	Total         string             `json:"total"`
	CheckoutState string             `json:"checkout_state"`
}

type intentResponse struct {
	Notice *models.Notice `json:"notice,omitempty"`
	Cart   cartResponse   `json:"cart"`
}

type receiptResponse struct {
	ID        string             `json:"id"`
	Buyer     models.BuyerInfo   `json:"buyer"`
	Lines     []cartLineResponse `json:"lines"`
	Units     int                `json:"units"`
	Total     string             `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
}

// Catalog lists the loaded products.
func (h *APIHandler) Catalog(c *gin.Context) {
	resp := catalogResponse{Products: []productResponse{}}
	for _, p := range h.deps.Catalog.Products() {
		resp.Products = append(resp.Products, productResponse{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Image:       p.Image,
			Price:       models.FormatMoney(p.Price),
			Stock:       p.Stock,
		})
	}
	if h.deps.Catalog.LoadError() != nil {
		resp.Error = catalogUnavailable.Message
	}
	c.JSON(http.StatusOK, resp)
}

// Cart returns the current cart with resolved titles and prices.
func (h *APIHandler) Cart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView())
}

// Intent applies a cart intent posted as JSON.
func (h *APIHandler) Intent(c *gin.Context) {
	var intent models.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		h.logger.Warn("invalid intent payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	intent.Type = models.NormalizeIntentType(string(intent.Type))

	notice, err := h.deps.Intents.HandleIntent(c.Request.Context(), intent)
	resp := intentResponse{Cart: h.cartView()}
	if notice.Title != "" {
		resp.Notice = &notice
	}

	status := statusFor(err)
	if errors.Is(err, cart.ErrNotPersisted) {
		// applied in memory; the notice carries the warning
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// BeginCheckout opens the checkout and returns the prefilled buyer form.
func (h *APIHandler) BeginCheckout(c *gin.Context) {
	form, err := h.deps.Checkout.Begin(c.Request.Context())
	if err != nil {
		notice := checkoutNotice(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "notice": notice})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form, "state": h.deps.Checkout.State()})
}

// ConfirmCheckout submits buyer info and returns the receipt once payment completes.
func (h *APIHandler) ConfirmCheckout(c *gin.Context) {
	var info models.BuyerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		h.logger.Warn("invalid buyer payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	receipt, err := h.deps.Checkout.Submit(c.Request.Context(), info)

	var validation *checkout.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": formValidationMessage, "missing": validation.Missing})
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"receipt": toReceiptResponse(receipt)})
	case errors.Is(err, cart.ErrNotPersisted):
		c.JSON(http.StatusOK, gin.H{"receipt": toReceiptResponse(receipt), "notice": checkoutNotice(err)})
	default:
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "notice": checkoutNotice(err)})
	}
}

// CancelCheckout abandons the buyer form.
func (h *APIHandler) CancelCheckout(c *gin.Context) {
	if err := h.deps.Checkout.Cancel(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.deps.Checkout.State()})
}

func (h *APIHandler) cartView() cartResponse {
	snapshot := h.deps.Cart.Snapshot()
	resp := cartResponse{
		Lines:         []cartLineResponse{},
		Count:         snapshot.Units(),
		Total:         models.FormatMoney(h.deps.Cart.CalculateTotal()),
		CheckoutState: string(h.deps.Checkout.State()),
	}
	for _, line := range snapshot.Lines {
		row := cartLineResponse{ID: line.ProductID, Quantity: line.Quantity}
		if p, ok := h.deps.Catalog.Find(line.ProductID); ok {
			row.Title = p.Title
			row.UnitPrice = models.FormatMoney(p.Price)
			row.LineTotal = models.FormatMoney(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		resp.Lines = append(resp.Lines, row)
	}
	return resp
}

func toReceiptResponse(r models.Receipt) receiptResponse {
	resp := receiptResponse{
		ID:        r.ID,
		Buyer:     r.Buyer,
		Lines:     []cartLineResponse{},
		Units:     r.Units,
		Total:     models.FormatMoney(r.Total),
		CreatedAt: r.CreatedAt,
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ID:        l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: models.FormatMoney(l.UnitPrice),
			LineTotal: models.FormatMoney(l.LineTotal),
		})
	}
	return resp
}
