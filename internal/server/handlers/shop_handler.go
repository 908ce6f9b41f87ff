package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/server/views"
	"github.com/mamadbah2/shopsim/internal/service/cart"
	"github.com/mamadbah2/shopsim/internal/service/checkout"
)

const pageTemplate = "index.tmpl"

// ShopHandler serves the HTML page. Every response re-derives the page from the
// current catalog, cart and checkout state; failures are shown as notices and
// never break the page.
type ShopHandler struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewShopHandler constructs the HTML handler.
func NewShopHandler(deps Dependencies, logger *zap.Logger) *ShopHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopHandler{deps: deps, logger: logger}
}

// Index renders the product grid and cart panel.
func (h *ShopHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, views.Page{})
}

// Details renders the product details dialog.
func (h *ShopHandler) Details(c *gin.Context) {
	p, ok := h.deps.Catalog.Find(c.Param("id"))
	if !ok {
		notice := models.Notice{Level: models.NoticeError, Title: "Error", Message: "Product not found."}
		h.render(c, http.StatusNotFound, views.Page{Notice: &notice})
		return
	}
	card := views.Card(p)
	h.render(c, http.StatusOK, views.Page{Details: &card})
}

// Intent dispatches a cart intent posted from the page.
func (h *ShopHandler) Intent(c *gin.Context) {
	var intent models.Intent
	if err := c.ShouldBind(&intent); err != nil {
		h.logger.Warn("invalid intent form", zap.Error(err))
		notice := models.Notice{Level: models.NoticeError, Title: "Error", Message: "Invalid request."}
		h.render(c, http.StatusBadRequest, views.Page{Notice: &notice})
		return
	}
	intent.Type = models.NormalizeIntentType(string(intent.Type))

	notice, _ := h.deps.Intents.HandleIntent(c.Request.Context(), intent)
	page := views.Page{}
	if notice.Title != "" {
		page.Notice = &notice
	}
	h.render(c, http.StatusOK, page)
}

// BeginCheckout opens the buyer form, or explains why it cannot.
func (h *ShopHandler) BeginCheckout(c *gin.Context) {
	form, err := h.deps.Checkout.Begin(c.Request.Context())
	if err != nil {
		notice := checkoutNotice(err)
		h.render(c, http.StatusOK, views.Page{Notice: &notice})
		return
	}
	h.render(c, http.StatusOK, views.Page{CheckoutForm: &form})
}

// ConfirmCheckout submits the buyer form and shows the receipt.
func (h *ShopHandler) ConfirmCheckout(c *gin.Context) {
	var info models.BuyerInfo
	if err := c.ShouldBind(&info); err != nil {
		h.logger.Warn("invalid buyer form", zap.Error(err))
	}

	receipt, err := h.deps.Checkout.Submit(c.Request.Context(), info)

	var validation *checkout.ValidationError
	switch {
	case errors.As(err, &validation):
		h.render(c, http.StatusOK, views.Page{CheckoutForm: &info, FormError: formValidationMessage})
	case err == nil:
		h.render(c, http.StatusOK, views.Page{Receipt: views.Receipt(receipt)})
	case errors.Is(err, cart.ErrNotPersisted):
		notice := checkoutNotice(err)
		h.render(c, http.StatusOK, views.Page{Receipt: views.Receipt(receipt), Notice: &notice})
	default:
		notice := checkoutNotice(err)
		h.render(c, http.StatusOK, views.Page{Notice: &notice})
	}
}

// CancelCheckout closes the buyer form.
func (h *ShopHandler) CancelCheckout(c *gin.Context) {
	if err := h.deps.Checkout.Cancel(); err != nil {
		h.logger.Debug("cancel without open checkout", zap.Error(err))
	}
	h.render(c, http.StatusOK, views.Page{})
}

func (h *ShopHandler) render(c *gin.Context, status int, page views.Page) {
	page.Products = views.Cards(h.deps.Catalog.Products())
	page.Cart = views.Panel(h.deps.Cart.Snapshot(), h.deps.Catalog.Find, h.deps.Cart.CalculateTotal(), c.Query("cart") == "open")
	if page.Notice == nil && h.deps.Catalog.LoadError() != nil {
		notice := catalogUnavailable
		page.Notice = &notice
	}
	c.HTML(status, pageTemplate, page)
}
