package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-admin-api/models"
	"restaurant-admin-api/services"
)

type MenuHandler struct {
	menu *services.MenuService
}

func NewMenuHandler(menu *services.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

type CreateMenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Category    string  `json:"category" binding:"required"`
	IsVeg       *bool   `json:"is_veg"`
	Image       string  `json:"image"`
	IsAvailable *bool   `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	RestaurantID string   `json:"restaurant_id"`
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Category     *string  `json:"category"`
	IsVeg        *bool    `json:"is_veg"`
	Image        *string  `json:"image"`
	IsAvailable  *bool    `json:"is_available"`
}

func (r UpdateMenuItemRequest) patch() models.MenuItemPatch {
	return models.MenuItemPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		IsVeg:       r.IsVeg,
		Image:       r.Image,
		IsAvailable: r.IsAvailable,
	}
}

// GetMenuItems lists a restaurant's menu, optionally narrowed by ?category=
func (h *MenuHandler) GetMenuItems(c *gin.Context) {
	h.list(c, c.Query("category"))
}

// GetMenuItemsByCategory is the path-parameter form of the category filter
func (h *MenuHandler) GetMenuItemsByCategory(c *gin.Context) {
	h.list(c, c.Param("category"))
}

func (h *MenuHandler) list(c *gin.Context, category string) {
	res, err := h.menu.List(c.Request.Context(), c.Param("id"), strings.TrimSpace(category))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{
		"menu_items": res.Value,
		"count":      len(res.Value),
		"category":   category,
	})
}

// CreateMenuItem adds an item to the restaurant's menu
func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.menu.Create(c.Request.Context(), c.Param("id"), models.MenuItemInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		IsVeg:       req.IsVeg,
		Image:       req.Image,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, res.Tier, gin.H{"message": "Menu item created", "menu_item": res.Value})
}

// UpdateMenuItem patches an item. Moving an external item to another category
// gives it a new id; the old one is returned as previous_id.
func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.menu.Update(c.Request.Context(), c.Param("id"), req.RestaurantID, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Menu item updated", "menu_item": res.Value})
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, errors.New("menu item id is required"))
		return
	}
	res, err := h.menu.Delete(c.Request.Context(), id, c.Query("restaurant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Menu item deleted", "id": res.Value})
}
