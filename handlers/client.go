package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trainertrack/forms"
	"trainertrack/models"
	"trainertrack/monitoring"
	"trainertrack/utils"
)

const clientCacheTTL = 24 * time.Hour

type ClientHandler struct {
	repo  models.Repository
	kafka utils.KafkaProducer
	cache utils.RedisClient
}

func NewClientHandler(repo models.Repository, kafka utils.KafkaProducer, cache utils.RedisClient) *ClientHandler {
	return &ClientHandler{
		repo:  repo,
		kafka: kafka,
		cache: cache,
	}
}

type ClientResponse struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var form forms.ClientForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !form.IsValid() {
		monitoring.FormRejections.WithLabelValues("client").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "client form is not valid"})
		return
	}

	client := form.Client()
	if err := h.repo.CreateClient(c.Request.Context(), &client); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("client", "create").Inc()

	if h.kafka != nil {
		go h.sendClientEvent("client_created", client)
	}
	h.cacheClient(c, client)

	c.JSON(http.StatusCreated, forms.ClientToForm(client))
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.repo.ListClients(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		items = append(items, toClientResponse(client))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetClient serves the editable representation of a client, reading through
// the cache when one is wired.
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetFromCache(c.Request.Context(), clientCacheKey(id)); err == nil {
			var client models.Client
			if err := json.Unmarshal([]byte(cached), &client); err == nil {
				c.JSON(http.StatusOK, forms.ClientToForm(client))
				return
			}
		}
	}

	client, err := h.repo.GetClientByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.cacheClient(c, *client)
	c.JSON(http.StatusOK, forms.ClientToForm(*client))
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	var form forms.ClientForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form.ID = id

	if !form.IsValid() {
		monitoring.FormRejections.WithLabelValues("client").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "client form is not valid"})
		return
	}

	if _, err := h.repo.GetClientByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	client := form.Client()
	if err := h.repo.UpdateClient(c.Request.Context(), &client); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("client", "update").Inc()

	if h.kafka != nil {
		go h.sendClientEvent("client_updated", client)
	}
	h.cacheClient(c, client)

	c.JSON(http.StatusOK, forms.ClientToForm(client))
}

// DeleteClient removes a client; the store cascades the delete to every
// measurement referencing it.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	if err := h.repo.DeleteClient(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("client", "delete").Inc()

	if h.kafka != nil {
		go publishEvent(h.kafka, map[string]interface{}{
			"event": "client_deleted",
			"id":    id,
		})
	}
	if h.cache != nil {
		if err := h.cache.DeleteFromCache(c.Request.Context(), clientCacheKey(id)); err != nil {
			log.Printf("Failed to drop client %d from cache: %v", id, err)
		}
	}

	c.Status(http.StatusNoContent)
}

func (h *ClientHandler) sendClientEvent(eventType string, client models.Client) {
	publishEvent(h.kafka, map[string]interface{}{
		"event":  eventType,
		"client": client,
	})
}

func (h *ClientHandler) cacheClient(c *gin.Context, client models.Client) {
	if h.cache == nil {
		return
	}
	clientJSON, err := json.Marshal(client)
	if err != nil {
		log.Printf("Failed to marshal client for cache: %v", err)
		return
	}
	if err := h.cache.SetToCache(c.Request.Context(), clientCacheKey(client.ID), string(clientJSON), clientCacheTTL); err != nil {
		log.Printf("Failed to cache client %d: %v", client.ID, err)
	}
}

func clientCacheKey(id uint) string {
	return fmt.Sprintf("client:%d", id)
}

func toClientResponse(client models.Client) ClientResponse {
	return ClientResponse{
		ID:          client.ID,
		FirstName:   client.FirstName,
		LastName:    client.LastName,
		Email:       client.Email,
		DateOfBirth: client.DateOfBirth,
	}
}
