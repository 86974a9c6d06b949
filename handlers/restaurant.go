package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-admin-api/models"
	"restaurant-admin-api/services"
)

type RestaurantHandler struct {
	restaurants *services.RestaurantService
}

func NewRestaurantHandler(restaurants *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

// CustomTypes accepts either a JSON array or a comma-separated string.
type CustomTypes []string

func (ct *CustomTypes) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*ct = trimAll(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*ct = trimAll(strings.Split(s, ","))
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type RestaurantRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Image       string      `json:"image"`
	Website     string      `json:"website"`
	MongoURI    string      `json:"mongo_uri"`
	CustomTypes CustomTypes `json:"custom_types"`
	IsActive    *bool       `json:"is_active"`
}

func (r RestaurantRequest) input() models.RestaurantInput {
	return models.RestaurantInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Address:     strings.TrimSpace(r.Address),
		Phone:       strings.TrimSpace(r.Phone),
		Email:       strings.TrimSpace(r.Email),
		Image:       strings.TrimSpace(r.Image),
		Website:     strings.TrimSpace(r.Website),
		MongoURI:    strings.TrimSpace(r.MongoURI),
		CustomTypes: r.CustomTypes,
		IsActive:    r.IsActive,
	}
}

// ListRestaurants returns every managed restaurant
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	res, err := h.restaurants.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"restaurants": res.Value, "count": len(res.Value)})
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	res, err := h.restaurants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"restaurant": res.Value})
}

// CreateRestaurant registers a restaurant. A mongo_uri pulls its categories
// from the restaurant's own database.
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.restaurants.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, res.Tier, gin.H{"message": "Restaurant created", "restaurant": res.Value})
}

func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.restaurants.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Restaurant updated", "restaurant": res.Value})
}

// DeleteRestaurant removes the restaurant along with its stored menu items
func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	res, err := h.restaurants.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Restaurant deleted", "id": res.Value.ID})
}

// RefreshCategories re-reads the category list from the restaurant's database
func (h *RestaurantHandler) RefreshCategories(c *gin.Context) {
	res, err := h.restaurants.RefreshCategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Categories already up to date"
	if res.Value.Changed {
		msg = "Categories refreshed"
	}
	respond(c, http.StatusOK, res.Tier, gin.H{
		"message":     msg,
		"categories":  res.Value.Categories,
		"changed":     res.Value.Changed,
		"collections": res.Value.Collections,
		"restaurant":  res.Value.Restaurant,
	})
}
