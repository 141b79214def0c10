package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"trainertrack/forms"
	"trainertrack/models"
	"trainertrack/monitoring"
	"trainertrack/utils"
)

type MeasurementHandler struct {
	repo  models.Repository
	kafka utils.KafkaProducer
	now   func() time.Time
}

func NewMeasurementHandler(repo models.Repository, kafka utils.KafkaProducer) *MeasurementHandler {
	return &MeasurementHandler{
		repo:  repo,
		kafka: kafka,
		now:   time.Now,
	}
}

type MeasurementResponse struct {
	ID               uint    `json:"id"`
	ClientID         uint    `json:"clientId"`
	Date             string  `json:"date"`
	BodyWeightKg     float64 `json:"bodyWeightKg"`
	LeanMuscleMassKg float64 `json:"leanMuscleMassKg"`
	BodyFatKg        float64 `json:"bodyFatKg"`
	VisceralFat      float64 `json:"visceralFat"`
	MineralsKg       float64 `json:"mineralsKg"`
	MetabolicAge     float64 `json:"metabolicAge"`
}

// TrendsResponse holds chronologically aligned series for each tracked
// metric; Dates[i] labels the i-th value of every series.
type TrendsResponse struct {
	Dates            []string  `json:"dates"`
	BodyWeightKg     []float64 `json:"bodyWeightKg"`
	LeanMuscleMassKg []float64 `json:"leanMuscleMassKg"`
	BodyFatKg        []float64 `json:"bodyFatKg"`
	VisceralFat      []float64 `json:"visceralFat"`
	MineralsKg       []float64 `json:"mineralsKg"`
	MetabolicAge     []float64 `json:"metabolicAge"`
}

// NewForm hands out a fresh measurement form bound to the client, with
// today's date pre-filled, ready for the first edit.
func (h *MeasurementHandler) NewForm(c *gin.Context) {
	clientID, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	if _, err := h.repo.GetClientByID(c.Request.Context(), clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, forms.NewMeasurementForm(clientID, h.now()))
}

func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	clientID, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	var form forms.MeasurementForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form.ClientID = clientID

	if !form.IsValid() {
		monitoring.FormRejections.WithLabelValues("measurement").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "measurement form is not valid"})
		return
	}

	if _, err := h.repo.GetClientByID(c.Request.Context(), clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	measurement := form.Measurement()
	if err := h.repo.CreateMeasurement(c.Request.Context(), &measurement); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("measurement", "create").Inc()

	if h.kafka != nil {
		go h.sendMeasurementEvent("measurement_created", measurement)
	}

	c.JSON(http.StatusCreated, forms.MeasurementToForm(measurement))
}

func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	clientID, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	measurements, err := h.repo.ListClientMeasurements(c.Request.Context(), clientID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]MeasurementResponse, 0, len(measurements))
	for _, m := range measurements {
		items = append(items, toMeasurementResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *MeasurementHandler) GetMeasurement(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measurement ID format"})
		return
	}

	measurement, err := h.repo.GetMeasurementByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "measurement not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, forms.MeasurementToForm(*measurement))
}

func (h *MeasurementHandler) UpdateMeasurement(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measurement ID format"})
		return
	}

	var form forms.MeasurementForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form.ID = id

	if !form.IsValid() {
		monitoring.FormRejections.WithLabelValues("measurement").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "measurement form is not valid"})
		return
	}

	existing, err := h.repo.GetMeasurementByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "measurement not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The parent client never changes on edit.
	form.ClientID = existing.ClientID

	measurement := form.Measurement()
	if err := h.repo.UpdateMeasurement(c.Request.Context(), &measurement); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("measurement", "update").Inc()

	if h.kafka != nil {
		go h.sendMeasurementEvent("measurement_updated", measurement)
	}

	c.JSON(http.StatusOK, forms.MeasurementToForm(measurement))
}

func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measurement ID format"})
		return
	}

	if err := h.repo.DeleteMeasurement(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "measurement not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitoring.EntityWrites.WithLabelValues("measurement", "delete").Inc()

	if h.kafka != nil {
		go publishEvent(h.kafka, map[string]interface{}{
			"event": "measurement_deleted",
			"id":    id,
		})
	}

	c.Status(http.StatusNoContent)
}

// Trends serves the client's measurements as per-metric series ordered by
// measurement date, which is what a chart consumes directly.
func (h *MeasurementHandler) Trends(c *gin.Context) {
	clientID, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID format"})
		return
	}

	if _, err := h.repo.GetClientByID(c.Request.Context(), clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	measurements, err := h.repo.ListClientMeasurements(c.Request.Context(), clientID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildTrends(measurements))
}

func buildTrends(measurements []models.Measurement) TrendsResponse {
	type dated struct {
		at time.Time
		m  models.Measurement
	}

	// Rows with a date that no longer parses are left out of the chart
	// rather than plotted at a bogus position.
	rows := make([]dated, 0, len(measurements))
	for _, m := range measurements {
		at, err := time.Parse(forms.DateLayout, m.Date)
		if err != nil {
			continue
		}
		rows = append(rows, dated{at: at, m: m})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].at.Before(rows[j].at)
	})

	trends := TrendsResponse{
		Dates:            make([]string, 0, len(rows)),
		BodyWeightKg:     make([]float64, 0, len(rows)),
		LeanMuscleMassKg: make([]float64, 0, len(rows)),
		BodyFatKg:        make([]float64, 0, len(rows)),
		VisceralFat:      make([]float64, 0, len(rows)),
		MineralsKg:       make([]float64, 0, len(rows)),
		MetabolicAge:     make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		trends.Dates = append(trends.Dates, row.m.Date)
		trends.BodyWeightKg = append(trends.BodyWeightKg, row.m.BodyWeightKg)
		trends.LeanMuscleMassKg = append(trends.LeanMuscleMassKg, row.m.LeanMuscleMassKg)
		trends.BodyFatKg = append(trends.BodyFatKg, row.m.BodyFatKg)
		trends.VisceralFat = append(trends.VisceralFat, row.m.VisceralFat)
		trends.MineralsKg = append(trends.MineralsKg, row.m.MineralsKg)
		trends.MetabolicAge = append(trends.MetabolicAge, row.m.MetabolicAge)
	}
	return trends
}

func (h *MeasurementHandler) sendMeasurementEvent(eventType string, m models.Measurement) {
	publishEvent(h.kafka, map[string]interface{}{
		"event":       eventType,
		"measurement": m,
	})
}

func toMeasurementResponse(m models.Measurement) MeasurementResponse {
	return MeasurementResponse{
		ID:               m.ID,
		ClientID:         m.ClientID,
		Date:             m.Date,
		BodyWeightKg:     m.BodyWeightKg,
		LeanMuscleMassKg: m.LeanMuscleMassKg,
		BodyFatKg:        m.BodyFatKg,
		VisceralFat:      m.VisceralFat,
		MineralsKg:       m.MineralsKg,
		MetabolicAge:     m.MetabolicAge,
	}
}
