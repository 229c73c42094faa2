// internal/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
	identity    *services.IdentityResolver
}

func NewCartHandler(cartService *services.CartService, identity *services.IdentityResolver) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		identity:    identity,
	}
}

// resolveCart finds or creates the caller's cart. When mint is set and the caller
// has no identity yet, a session cookie is issued.
func (h *CartHandler) resolveCart(c *gin.Context, in services.IdentityInput, mint bool) (*models.Cart, bool) {
	authUserID, _ := utils.GetUserIDFromContext(c)

	identity, cookie, err := h.identity.Resolve(in, c.Request, authUserID, mint)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	if cookie != nil {
		http.SetCookie(c.Writer, cookie)
	}

	cart, err := h.cartService.GetOrCreate(c.Request.Context(), identity)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}

	// A signed-in caller still holding a guest cookie adopts the guest cart.
	if authUserID > 0 && identity.HasUser() && *identity.UserID == authUserID && !identity.HasSession() {
		if token, ok := h.identity.GuestToken(c.Request); ok {
			cart, err = h.cartService.MergeGuestCart(c.Request.Context(), cart.ID, token)
			if err != nil {
				utils.HandleError(c, err)
				return nil, false
			}
			http.SetCookie(c.Writer, h.identity.ExpiredSessionCookie())
		}
	}
	return cart, true
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	var in services.IdentityInput
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}
	in.UserID = userID
	if token := c.Query("sessionToken"); token != "" {
		in.SessionToken = &token
	}

	cart, ok := h.resolveCart(c, in, false)
	if !ok {
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, ok := h.resolveCart(c, req.IdentityInput, true)
	if !ok {
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), cart.ID, req.ProductID, quantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/update
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, ok := h.resolveCart(c, req.IdentityInput, true)
	if !ok {
		return
	}

	cart, err := h.cartService.UpdateQty(c.Request.Context(), cart.ID, req.ProductID, *req.Quantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/remove
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req services.RemoveCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, ok := h.resolveCart(c, req.IdentityInput, true)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), cart.ID, req.ProductID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	var req services.IdentityInput
	if !bindJSON(c, &req) {
		return
	}

	cart, ok := h.resolveCart(c, req, true)
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(c.Request.Context(), cart.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}
